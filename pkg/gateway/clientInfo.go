package gateway

import (
	"fmt"
	"net/http"
)

const (
	HeaderContentType        = "Content-Type"
	HeaderUserAgent          = "User-Agent"
	HeaderIntegration        = "Mindbox-Integration"
	HeaderIntegrationVersion = "Mindbox-Integration-Version"

	contentTypeJSON = "application/json; charset=utf-8"
	integrationName = "Go-SDK"
)

// ClientInfo describes the host application and device. It is rendered into
// the request headers.
type ClientInfo struct {
	PackageName string
	VersionName string
	VersionCode string
	OSName      string
	OSVersion   string
	Vendor      string
	Model       string
	SDKVersion  string
}

// UserAgent formats "{app} + {version}({code}), {os} + {os version}, {vendor}, {model}".
func (c ClientInfo) UserAgent() string {
	return fmt.Sprintf("%s + %s(%s), %s + %s, %s, %s",
		c.PackageName, c.VersionName, c.VersionCode, c.OSName, c.OSVersion, c.Vendor, c.Model)
}

// Headers returns the headers sent with every delivery request.
func (c ClientInfo) Headers() http.Header {
	h := make(http.Header)
	h.Set(HeaderContentType, contentTypeJSON)
	h.Set(HeaderUserAgent, c.UserAgent())
	h.Set(HeaderIntegration, integrationName)
	h.Set(HeaderIntegrationVersion, c.SDKVersion)
	return h
}
