// Package swift is a client for the OpenStack Swift object-storage API.
//
// A Client authenticates once at construction and attaches the resulting
// token to every request. When a request is answered with 401 the client
// re-authenticates (consulting the shared token cache first) and replays
// the request exactly once, rewinding a streamed body to where it started.
//
//	client, err := swift.New(ctx, config.Options{
//	    AuthURL:    "https://identity.example.com/v3",
//	    Username:   "demo",
//	    Password:   "secret",
//	    UserDomain: "Default",
//	    ProjectName: "demo", ProjectDomainName: "Default",
//	}, swift.WithLogger(log))
//
//	f, _ := os.Open("photo.jpg")
//	_, err = client.PutObject(ctx, "photos", "photo.jpg", f, nil)
//
//	for page, err := range client.PaginateObjects(ctx, "photos", nil) {
//	    ...
//	}
//
// Request bodies may be nil, []byte, string or an io.ReadSeeker. Other
// readers are rejected because they cannot be replayed after a 401.
package swift
