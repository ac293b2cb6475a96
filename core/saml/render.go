package saml

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SlugForSite drops the TLD of the site domain, joins the rest with "-" and appends the suffix.
// bc.futurex.sa -> bc-futurex-lms-sso
func (t Template) SlugForSite(site Site) string {
	parts := strings.Split(site.Domain, ".")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "-") + "-" + t.SlugSuffix
}

// ConfigurationEntityID is the service-provider entity id of the site.
func (t Template) ConfigurationEntityID(site Site) string {
	return "https://saml." + site.Domain
}

// OrganizationInfo renders the organization info template for the site, substituting {domain}.
// The raw template is returned when it is not a JSON object of per-language objects.
func (t Template) OrganizationInfo(site Site) string {
	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(t.OrganizationInfoTemplate), &parsed); err != nil {
		return t.OrganizationInfoTemplate
	}

	for _, data := range parsed {
		for key, value := range data {
			if s, ok := value.(string); ok {
				data[key] = formatDomain(s, site.Domain)
			}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(parsed); err != nil {
		return t.OrganizationInfoTemplate
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var braceEscaper = strings.NewReplacer("{{", "{", "}}", "}")

func formatDomain(s, domain string) string {
	s = strings.ReplaceAll(s, "{domain}", domain)
	return braceEscaper.Replace(s)
}
