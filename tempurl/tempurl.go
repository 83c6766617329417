// Package tempurl signs time-limited object URLs.
//
// A temp URL lets a third party GET one object without an auth token until
// the expiry passes. The signature is the hex HMAC-SHA1, keyed by the
// account's temp URL key, of
//
//	GET\n{unix expiry}\n{url path}
package tempurl

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the signature scheme is fixed by the server
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kbukum/swiftkit/errors"
)

// Sign returns the hex signature of a GET of path until expires.
func Sign(path string, expires time.Time, key string) (string, error) {
	if key == "" {
		return "", errors.TempURLKeyMissing()
	}
	mac := hmac.New(sha1.New, []byte(key))
	fmt.Fprintf(mac, "GET\n%d\n%s", expires.Unix(), path)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Generate returns {storageURL}/{container}/{object} with the temp_url_sig
// and temp_url_expires query parameters. The signed path is the URL path of
// the object URL, e.g. /v1/AUTH_account/container/object.
func Generate(storageURL, container, object, key string, expires time.Time) (string, error) {
	objectURL := storageURL + "/" + container + "/" + object
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", errors.Option("invalid storage url %q", storageURL).WithCause(err)
	}
	sig, err := Sign(u.Path, expires, key)
	if err != nil {
		return "", err
	}
	return objectURL + "?temp_url_sig=" + sig + "&temp_url_expires=" + strconv.FormatInt(expires.Unix(), 10), nil
}
