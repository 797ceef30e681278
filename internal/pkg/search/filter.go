package search

import (
	"net/url"
	"path"
	"strings"
)

// hosts that describe medicines rather than sell them
var nonCommercialHosts = []string{
	"wikipedia.org",
	"wikidata.org",
	"britannica.com",
	"europa.eu",
	"who.int",
	"drugs.com",
	"medlineplus.gov",
	"webmd.com",
	"zva.gov.lv",
	"nih.gov",
	"youtube.com",
	"facebook.com",
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
}

// IsNonCommercial is true for encyclopedias, regulators and document links.
func IsNonCommercial(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".gov.lv") || strings.Contains(host, ".gov.") {
		return true
	}
	for _, h := range nonCommercialHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}

	return documentExtensions[strings.ToLower(path.Ext(u.Path))]
}
