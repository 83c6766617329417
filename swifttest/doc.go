// Package swifttest runs an in-process fake of the object-storage API and
// its identity service for tests.
//
// The fake speaks all three identity protocols, keeps containers and
// objects in memory, honours marker/limit/prefix on listings, accepts bulk
// deletes and validates temp URLs. Tests can expire tokens, inject failures
// and inspect every storage request it received:
//
//	srv := swifttest.New(swifttest.Config{}, nil)
//	defer srv.Close()
//
//	client, err := swift.New(ctx, srv.OptionsV3())
//	srv.ExpireTokens() // the next request gets a 401
package swifttest
