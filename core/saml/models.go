package saml

import "time"

const (
	DefaultSlugSuffix        = "lms-sso"
	DefaultConfigurationSlug = "default"
	DefaultBackendName       = "tpa-saml"
	StandardSAMLProviderKey  = "standard_saml_provider"

	DefaultOrganizationInfoTemplate = `{"en-US": {"url": "http://www.example.com", "displayname": "Example Inc.", "name": "example"}}`
	DefaultOtherConfigStr           = "{\n\"SECURITY_CONFIG\": {\"metadataCacheDuration\": 604800, \"signMetadata\": false}\n}"
)

type (
	Site struct {
		ID     int    `json:"id" yaml:"id"`
		Domain string `json:"domain" yaml:"domain"`
	}

	// ProviderSettings are the identity-provider fields copied verbatim into every site's provider config.
	ProviderSettings struct {
		IconClass               string `json:"icon_class" yaml:"icon_class"`
		Secondary               bool   `json:"secondary" yaml:"secondary"`
		SendWelcomeEmail        bool   `json:"send_welcome_email" yaml:"send_welcome_email"`
		Visible                 bool   `json:"visible" yaml:"visible"`
		MaxSessionLength        *int   `json:"max_session_length" yaml:"max_session_length"`
		SyncLearnerProfileData  bool   `json:"sync_learner_profile_data" yaml:"sync_learner_profile_data"`
		EnableSSOIDVerification bool   `json:"enable_sso_id_verification" yaml:"enable_sso_id_verification"`
		DisableForEnterpriseSSO bool   `json:"disable_for_enterprise_sso" yaml:"disable_for_enterprise_sso"`
		BackendName             string `json:"backend_name" yaml:"backend_name"`
		EntityID                string `json:"entity_id" yaml:"entity_id"`
		MetadataSource          string `json:"metadata_source" yaml:"metadata_source"`
		AttrUserPermanentID     string `json:"attr_user_permanent_id" yaml:"attr_user_permanent_id"`
		AttrFullName            string `json:"attr_full_name" yaml:"attr_full_name"`
		DefaultFullName         string `json:"default_full_name" yaml:"default_full_name"`
		AttrFirstName           string `json:"attr_first_name" yaml:"attr_first_name"`
		DefaultFirstName        string `json:"default_first_name" yaml:"default_first_name"`
		AttrLastName            string `json:"attr_last_name" yaml:"attr_last_name"`
		DefaultLastName         string `json:"default_last_name" yaml:"default_last_name"`
		AttrUsername            string `json:"attr_username" yaml:"attr_username"`
		DefaultUsername         string `json:"default_username" yaml:"default_username"`
		AttrEmail               string `json:"attr_email" yaml:"attr_email"`
		DefaultEmail            string `json:"default_email" yaml:"default_email"`
		AutomaticRefreshEnabled bool   `json:"automatic_refresh_enabled" yaml:"automatic_refresh_enabled"`
		IdentityProviderType    string `json:"identity_provider_type" yaml:"identity_provider_type"`
		Country                 string `json:"country" yaml:"country"`
		SkipHintedLoginDialog   bool   `json:"skip_hinted_login_dialog" yaml:"skip_hinted_login_dialog"`
		SkipRegistrationForm    bool   `json:"skip_registration_form" yaml:"skip_registration_form"`
		SkipEmailVerification   bool   `json:"skip_email_verification" yaml:"skip_email_verification"`
		SendToRegistrationFirst bool   `json:"send_to_registration_first" yaml:"send_to_registration_first"`
		OtherSettings           string `json:"other_settings" yaml:"other_settings"`
	}

	// Template is a reusable bulk SAML configuration applied to each of its sites.
	Template struct {
		ID                          int              `json:"id" yaml:"-"`
		Name                        string           `json:"name" yaml:"name"`
		Enabled                     bool             `json:"enabled" yaml:"enabled"`
		ChangedBy                   *int             `json:"changed_by" yaml:"changed_by"`
		ChangedDate                 time.Time        `json:"changed_date" yaml:"-"`
		SiteIDs                     []int            `json:"sites" yaml:"sites"`
		SlugSuffix                  string           `json:"slug_suffix" yaml:"slug_suffix"`
		UseDefaultConfigurationSlug bool             `json:"use_default_saml_configuration_slug" yaml:"use_default_saml_configuration_slug"`
		Provider                    ProviderSettings `json:"provider" yaml:"provider"`
		Archived                    bool             `json:"archived" yaml:"archived"`
		OrganizationInfoTemplate    string           `json:"organization_info_template" yaml:"organization_info_template"`
		OtherConfigStr              string           `json:"other_config_str" yaml:"other_config_str"`
	}

	// Configuration is the service-provider side SAML configuration of a site.
	Configuration struct {
		ID             int       `json:"id"`
		SiteID         int       `json:"site_id"`
		Slug           string    `json:"slug"`
		Enabled        bool      `json:"enabled"`
		ChangedBy      *int      `json:"changed_by"`
		EntityID       string    `json:"entity_id"`
		OrgInfoStr     string    `json:"org_info_str"`
		OtherConfigStr string    `json:"other_config_str"`
		IsPublic       bool      `json:"is_public"`
		ChangedDate    time.Time `json:"changed_date"`
	}

	// ProviderConfig is the identity-provider configuration of a site.
	ProviderConfig struct {
		ID                  int              `json:"id"`
		SiteID              int              `json:"site_id"`
		Slug                string           `json:"slug"`
		Name                string           `json:"name"`
		Enabled             bool             `json:"enabled"`
		ChangedBy           *int             `json:"changed_by"`
		Archived            bool             `json:"archived"`
		SAMLConfigurationID int              `json:"saml_configuration_id"`
		Settings            ProviderSettings `json:"settings"`
		ChangedDate         time.Time        `json:"changed_date"`
	}
)

// NewTemplate returns a template carrying the stock field defaults.
func NewTemplate(name string) Template {
	return Template{
		Name:                        name,
		Enabled:                     true,
		SlugSuffix:                  DefaultSlugSuffix,
		UseDefaultConfigurationSlug: true,
		Provider: ProviderSettings{
			Visible:                 true,
			SyncLearnerProfileData:  true,
			EnableSSOIDVerification: true,
			BackendName:             DefaultBackendName,
			AutomaticRefreshEnabled: true,
			IdentityProviderType:    StandardSAMLProviderKey,
			SkipHintedLoginDialog:   true,
			SkipRegistrationForm:    true,
			SkipEmailVerification:   true,
			SendToRegistrationFirst: true,
		},
		OrganizationInfoTemplate: DefaultOrganizationInfoTemplate,
		OtherConfigStr:           DefaultOtherConfigStr,
	}
}
