// Package nearshare sends URIs and files to peers found by discovery.
//
// Peers speak a small HTTP protocol:
//
//	POST /nearshare/v1/uri    JSON body {"uri": "..."}
//	POST /nearshare/v1/files  raw file body, one request per file
//	GET  /nearshare/v1/info   JSON description of the peer
//
// Every request carries the sender's identity in X-Nearshare-* headers.
package nearshare

import (
	"net/http"

	"nearshare/internal/domain"
)

const (
	PathURI   = "/nearshare/v1/uri"
	PathFiles = "/nearshare/v1/files"
	PathInfo  = "/nearshare/v1/info"

	HeaderSenderID   = "X-Nearshare-Sender"
	HeaderSenderName = "X-Nearshare-Sender-Name"
	HeaderOwner      = "X-Nearshare-Owner"
	HeaderTransferID = "X-Nearshare-Transfer"
	HeaderFileName   = "X-Nearshare-Name"
	HeaderFileSize   = "X-Nearshare-Size"
)

// URIRequest is the body of a URI share
type URIRequest struct {
	URI string `json:"uri"`
}

// Info describes a peer, served at PathInfo
type Info struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Owner          string   `json:"owner,omitempty"`
	AllowAnonymous bool     `json:"allow_anonymous"`
	Capabilities   []string `json:"capabilities"`
}

// InfoFor describes a local device
func InfoFor(d domain.Device) Info {
	return Info{
		ID:             d.ID,
		Name:           d.DisplayName,
		Kind:           string(d.Kind),
		Owner:          d.Owner,
		AllowAnonymous: d.AllowAnonymous,
		Capabilities:   d.Capabilities,
	}
}

// Identity says who a request came from
type Identity struct {
	ID    string
	Name  string
	Owner string
}

// IdentityFrom reads the identity headers of a request
func IdentityFrom(h http.Header) Identity {
	return Identity{
		ID:    h.Get(HeaderSenderID),
		Name:  h.Get(HeaderSenderName),
		Owner: h.Get(HeaderOwner),
	}
}

func (id Identity) apply(h http.Header) {
	h.Set(HeaderSenderID, id.ID)
	h.Set(HeaderSenderName, id.Name)
	if id.Owner != "" {
		h.Set(HeaderOwner, id.Owner)
	}
}
