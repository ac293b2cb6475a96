// Package saml provisions per-site SAML configurations from bulk templates.
package saml

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
)

var (
	ErrTemplateNotFound      = errors.New("saml template not found")
	ErrSiteNotFound          = errors.New("site not found")
	ErrConfigurationNotFound = errors.New("saml configuration not found")
)

type (
	Repository interface {
		CreateSite(ctx context.Context, site Site) (Site, error)
		GetSites(ctx context.Context, ids ...int) ([]Site, error)
		// SaveTemplate creates the template when its ID is zero and updates it otherwise.
		// The template's sites are replaced by SiteIDs.
		SaveTemplate(ctx context.Context, t Template) (Template, error)
		GetTemplate(ctx context.Context, id int) (Template, error)
		GetTemplateByName(ctx context.Context, name string) (Template, error)
		// AddTemplateSites links sites to the template and returns the ids that were not linked before.
		AddTemplateSites(ctx context.Context, templateID int, siteIDs ...int) ([]int, error)
		// UpsertConfiguration creates or updates the configuration matching (SiteID, Slug).
		UpsertConfiguration(ctx context.Context, conf Configuration) (Configuration, error)
		// UpsertProviderConfig creates or updates the non-archived provider config matching (SiteID, Slug).
		UpsertProviderConfig(ctx context.Context, conf ProviderConfig) (ProviderConfig, error)
		GetConfiguration(ctx context.Context, siteID int, slug string) (Configuration, error)
		GetProviderConfig(ctx context.Context, siteID int, slug string) (ProviderConfig, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Save persists the template then applies it to every one of its sites.
func (svc *Service) Save(ctx context.Context, t Template) (Template, error) {
	t.Name = core.CleanString(t.Name)
	if t.Name == "" {
		return Template{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}
	if t.SlugSuffix == "" {
		t.SlugSuffix = DefaultSlugSuffix
	}
	t.ChangedDate = time.Now().UTC()

	saved, err := svc.repo.SaveTemplate(ctx, t)
	if err != nil {
		return Template{}, errors.Wrap(err, "saving template")
	}
	sites, err := svc.repo.GetSites(ctx, saved.SiteIDs...)
	if err != nil {
		return Template{}, errors.Wrap(err, "getting template sites")
	}
	if err = svc.ApplyToSites(ctx, saved, sites); err != nil {
		return Template{}, err
	}
	return saved, nil
}

// AddSites links new sites to a template and applies it to the newly linked ones only.
func (svc *Service) AddSites(ctx context.Context, templateID int, siteIDs ...int) (Template, error) {
	t, err := svc.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return Template{}, errors.Wrap(err, "getting template")
	}
	added, err := svc.repo.AddTemplateSites(ctx, templateID, siteIDs...)
	if err != nil {
		return Template{}, errors.Wrap(err, "adding template sites")
	}
	if len(added) == 0 {
		return t, nil
	}
	sites, err := svc.repo.GetSites(ctx, added...)
	if err != nil {
		return Template{}, errors.Wrap(err, "getting added sites")
	}
	if err = svc.ApplyToSites(ctx, t, sites); err != nil {
		return Template{}, err
	}
	return svc.repo.GetTemplate(ctx, templateID)
}

// ApplyToSites creates or updates the SAML configuration and provider config of each site.
func (svc *Service) ApplyToSites(ctx context.Context, t Template, sites []Site) error {
	for _, site := range sites {
		slug := t.SlugForSite(site)

		conf, err := svc.applyConfiguration(ctx, t, site, slug)
		if err != nil {
			return errors.Wrapf(err, "applying saml configuration to %s", site.Domain)
		}
		if _, err = svc.applyProviderConfig(ctx, t, site, slug, conf); err != nil {
			return errors.Wrapf(err, "applying provider config to %s", site.Domain)
		}
		svc.logger.Info(fmt.Sprintf("saml template %q applied to site %s with slug %s", t.Name, site.Domain, slug))
	}
	return nil
}

func (svc *Service) applyConfiguration(ctx context.Context, t Template, site Site, slug string) (Configuration, error) {
	if t.UseDefaultConfigurationSlug {
		slug = DefaultConfigurationSlug
	}
	return svc.repo.UpsertConfiguration(ctx, Configuration{
		SiteID:         site.ID,
		Slug:           slug,
		Enabled:        true,
		ChangedBy:      t.ChangedBy,
		EntityID:       t.ConfigurationEntityID(site),
		OrgInfoStr:     t.OrganizationInfo(site),
		OtherConfigStr: t.OtherConfigStr,
		IsPublic:       true,
		ChangedDate:    time.Now().UTC(),
	})
}

func (svc *Service) applyProviderConfig(ctx context.Context, t Template, site Site, slug string, conf Configuration) (ProviderConfig, error) {
	return svc.repo.UpsertProviderConfig(ctx, ProviderConfig{
		SiteID:              site.ID,
		Slug:                slug,
		Name:                t.Name,
		Enabled:             true,
		ChangedBy:           t.ChangedBy,
		Archived:            t.Archived,
		SAMLConfigurationID: conf.ID,
		Settings:            t.Provider,
		ChangedDate:         time.Now().UTC(),
	})
}
