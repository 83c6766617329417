package auth

import (
	"github.com/kbukum/swiftkit/errors"
)

const objectStoreType = "object-store"

type catalogEntry struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Endpoints []catalogEndpoint `json:"endpoints"`
}

type catalogEndpoint struct {
	ID        string `json:"id"`
	Interface string `json:"interface"`
	Region    string `json:"region"`
	URL       string `json:"url"`
}

// resolveStorageURL picks the object-store endpoint for iface. Exactly one
// object-store service and exactly one matching endpoint must exist.
func resolveStorageURL(catalog []catalogEntry, iface string) (string, error) {
	var services []catalogEntry
	for _, entry := range catalog {
		if entry.Type == objectStoreType {
			services = append(services, entry)
		}
	}
	if len(services) != 1 {
		return "", errors.Authentication("found %d object-store services in catalog, expected exactly one", len(services)).
			WithDetail("services", len(services))
	}

	var endpoints []catalogEndpoint
	for _, ep := range services[0].Endpoints {
		if ep.Interface == iface {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) != 1 {
		return "", errors.Authentication("found %d %s object-store endpoints, expected exactly one", len(endpoints), iface).
			WithDetail("endpoints", len(endpoints)).
			WithDetail("interface", iface)
	}
	if endpoints[0].URL == "" {
		return "", errors.Authentication("object-store endpoint has no url")
	}
	return endpoints[0].URL, nil
}
