// Package httpclient is the HTTP transport of swiftkit.
//
// Unlike a general-purpose REST client it never interprets response status
// codes: every response, successful or not, is handed back so the caller can
// decide whether a 401 means re-authentication or a failure. Only
// transport-level problems (timeouts, refused connections, malformed
// requests) are returned as *Error.
//
// Request bodies are never closed by the adapter, so a seekable body can be
// rewound and sent again.
//
//	a, err := httpclient.New(httpclient.Config{Timeout: 30 * time.Second})
//	resp, err := a.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    URL:    "https://storage.example.com/v1/AUTH_acct/photos",
//	    Query:  map[string]string{"limit": "100"},
//	})
package httpclient
