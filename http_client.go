package main

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

// externalHTTPClient is shared by all outbound API calls. main() adjusts its
// timeout from config before anything uses it.
var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}
