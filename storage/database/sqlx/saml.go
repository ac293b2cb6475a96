package sqlxrepos

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core/saml"
)

const (
	templateColumns = `id, name, enabled, changed_by, changed_date, slug_suffix, use_default_saml_configuration_slug,
		provider, archived, organization_info_template, other_config_str`
	configurationColumns = `id, site_id, slug, enabled, changed_by, entity_id, org_info_str, other_config_str,
		is_public, changed_date`
	providerConfigColumns = `id, site_id, slug, name, enabled, changed_by, archived,
		COALESCE(saml_configuration_id, 0) AS saml_configuration_id, settings, changed_date`
)

type templateRow struct {
	ID                          int            `db:"id"`
	Name                        string         `db:"name"`
	Enabled                     bool           `db:"enabled"`
	ChangedBy                   *int           `db:"changed_by"`
	ChangedDate                 time.Time      `db:"changed_date"`
	SlugSuffix                  string         `db:"slug_suffix"`
	UseDefaultConfigurationSlug bool           `db:"use_default_saml_configuration_slug"`
	Provider                    types.JSONText `db:"provider"`
	Archived                    bool           `db:"archived"`
	OrganizationInfoTemplate    string         `db:"organization_info_template"`
	OtherConfigStr              string         `db:"other_config_str"`
}

type providerConfigRow struct {
	ID                  int            `db:"id"`
	SiteID              int            `db:"site_id"`
	Slug                string         `db:"slug"`
	Name                string         `db:"name"`
	Enabled             bool           `db:"enabled"`
	ChangedBy           *int           `db:"changed_by"`
	Archived            bool           `db:"archived"`
	SAMLConfigurationID int            `db:"saml_configuration_id"`
	Settings            types.JSONText `db:"settings"`
	ChangedDate         time.Time      `db:"changed_date"`
}

type configurationRow struct {
	ID             int       `db:"id"`
	SiteID         int       `db:"site_id"`
	Slug           string    `db:"slug"`
	Enabled        bool      `db:"enabled"`
	ChangedBy      *int      `db:"changed_by"`
	EntityID       string    `db:"entity_id"`
	OrgInfoStr     string    `db:"org_info_str"`
	OtherConfigStr string    `db:"other_config_str"`
	IsPublic       bool      `db:"is_public"`
	ChangedDate    time.Time `db:"changed_date"`
}

type samlRepository struct {
	db *sqlx.DB
}

var _ saml.Repository = (*samlRepository)(nil) // interface compliance check

func NewSAMLRepository(db *sqlx.DB) saml.Repository {
	return &samlRepository{db: db}
}

// inTx runs fn in a transaction, rolled back when fn fails.
func (repo *samlRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *samlRepository) CreateSite(ctx context.Context, site saml.Site) (saml.Site, error) {
	err := repo.db.QueryRowxContext(ctx, "INSERT INTO sites (domain) VALUES ($1) RETURNING id", site.Domain).Scan(&site.ID)
	if err != nil {
		return saml.Site{}, errors.Wrap(err, "inserting site")
	}
	return site, nil
}

func (repo *samlRepository) GetSites(ctx context.Context, ids ...int) ([]saml.Site, error) {
	return getSites(ctx, repo.db, ids)
}

func getSites(ctx context.Context, q sqlx.QueryerContext, ids []int) ([]saml.Site, error) {
	if len(ids) == 0 {
		return []saml.Site{}, nil
	}
	var found []saml.Site
	if err := sqlx.SelectContext(ctx, q, &found, "SELECT id, domain FROM sites WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting sites")
	}
	byID := make(map[int]saml.Site, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	sites := make([]saml.Site, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, saml.ErrSiteNotFound
		}
		sites = append(sites, s)
	}
	return sites, nil
}

func (repo *samlRepository) SaveTemplate(ctx context.Context, t saml.Template) (saml.Template, error) {
	provider, err := json.Marshal(t.Provider)
	if err != nil {
		return saml.Template{}, errors.Wrap(err, "encoding provider settings")
	}
	t.SiteIDs = uniqueSorted(t.SiteIDs)
	if t.ChangedDate.IsZero() {
		t.ChangedDate = time.Now().UTC()
	}

	err = repo.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getSites(ctx, tx, t.SiteIDs); err != nil {
			return err
		}

		args := []interface{}{
			t.Name, t.Enabled, t.ChangedBy, t.ChangedDate, t.SlugSuffix, t.UseDefaultConfigurationSlug,
			types.JSONText(provider), t.Archived, t.OrganizationInfoTemplate, t.OtherConfigStr,
		}
		if t.ID == 0 {
			err := tx.QueryRowxContext(ctx,
				`INSERT INTO saml_templates (name, enabled, changed_by, changed_date, slug_suffix,
				use_default_saml_configuration_slug, provider, archived, organization_info_template, other_config_str)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
				args...,
			).Scan(&t.ID)
			if err != nil {
				return errors.Wrap(err, "inserting saml template")
			}
		} else {
			res, err := tx.ExecContext(ctx,
				`UPDATE saml_templates SET name = $1, enabled = $2, changed_by = $3, changed_date = $4, slug_suffix = $5,
				use_default_saml_configuration_slug = $6, provider = $7, archived = $8,
				organization_info_template = $9, other_config_str = $10
				WHERE id = $11`,
				append(args, t.ID)...,
			)
			if err != nil {
				return errors.Wrap(err, "updating saml template")
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return saml.ErrTemplateNotFound
			}
			if _, err = tx.ExecContext(ctx, "DELETE FROM saml_template_sites WHERE template_id = $1", t.ID); err != nil {
				return errors.Wrap(err, "unlinking template sites")
			}
		}

		for _, siteID := range t.SiteIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO saml_template_sites (template_id, site_id) VALUES ($1, $2)", t.ID, siteID,
			); err != nil {
				return errors.Wrap(err, "linking template site")
			}
		}
		return nil
	})
	if err != nil {
		return saml.Template{}, err
	}
	return t, nil
}

func (repo *samlRepository) getTemplate(ctx context.Context, where string, arg interface{}) (saml.Template, error) {
	var row templateRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+templateColumns+" FROM saml_templates WHERE "+where, arg); err != nil {
		return saml.Template{}, trapNoRowsErr(err, saml.ErrTemplateNotFound, "getting saml template")
	}

	t := saml.Template{
		ID:                          row.ID,
		Name:                        row.Name,
		Enabled:                     row.Enabled,
		ChangedBy:                   row.ChangedBy,
		ChangedDate:                 row.ChangedDate,
		SlugSuffix:                  row.SlugSuffix,
		UseDefaultConfigurationSlug: row.UseDefaultConfigurationSlug,
		Archived:                    row.Archived,
		OrganizationInfoTemplate:    row.OrganizationInfoTemplate,
		OtherConfigStr:              row.OtherConfigStr,
		SiteIDs:                     []int{},
	}
	if err := row.Provider.Unmarshal(&t.Provider); err != nil {
		return saml.Template{}, errors.Wrap(err, "decoding provider settings")
	}
	err := repo.db.SelectContext(ctx, &t.SiteIDs,
		"SELECT site_id FROM saml_template_sites WHERE template_id = $1 ORDER BY site_id", t.ID,
	)
	if err != nil {
		return saml.Template{}, errors.Wrap(err, "selecting template sites")
	}
	return t, nil
}

func (repo *samlRepository) GetTemplate(ctx context.Context, id int) (saml.Template, error) {
	return repo.getTemplate(ctx, "id = $1", id)
}

func (repo *samlRepository) GetTemplateByName(ctx context.Context, name string) (saml.Template, error) {
	return repo.getTemplate(ctx, "name = $1", name)
}

func (repo *samlRepository) AddTemplateSites(ctx context.Context, templateID int, siteIDs ...int) ([]int, error) {
	added := make([]int, 0, len(siteIDs))
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM saml_templates WHERE id = $1)", templateID); err != nil {
			return errors.Wrap(err, "checking saml template")
		}
		if !exists {
			return saml.ErrTemplateNotFound
		}
		ids := uniqueSorted(siteIDs)
		if _, err := getSites(ctx, tx, ids); err != nil {
			return err
		}

		for _, siteID := range ids {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO saml_template_sites (template_id, site_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				templateID, siteID,
			)
			if err != nil {
				return errors.Wrap(err, "linking template site")
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added = append(added, siteID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (repo *samlRepository) UpsertConfiguration(ctx context.Context, conf saml.Configuration) (saml.Configuration, error) {
	if conf.ChangedDate.IsZero() {
		conf.ChangedDate = time.Now().UTC()
	}
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO saml_configurations (site_id, slug, enabled, changed_by, entity_id, org_info_str, other_config_str,
		is_public, changed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (site_id, slug) DO UPDATE SET enabled = EXCLUDED.enabled, changed_by = EXCLUDED.changed_by,
		entity_id = EXCLUDED.entity_id, org_info_str = EXCLUDED.org_info_str,
		other_config_str = EXCLUDED.other_config_str, is_public = EXCLUDED.is_public,
		changed_date = EXCLUDED.changed_date
		RETURNING id`,
		conf.SiteID, conf.Slug, conf.Enabled, conf.ChangedBy, conf.EntityID, conf.OrgInfoStr, conf.OtherConfigStr,
		conf.IsPublic, conf.ChangedDate,
	).Scan(&conf.ID)
	if err != nil {
		return saml.Configuration{}, errors.Wrap(err, "upserting saml configuration")
	}
	return conf, nil
}

func (repo *samlRepository) UpsertProviderConfig(ctx context.Context, conf saml.ProviderConfig) (saml.ProviderConfig, error) {
	settings, err := json.Marshal(conf.Settings)
	if err != nil {
		return saml.ProviderConfig{}, errors.Wrap(err, "encoding provider settings")
	}
	if conf.ChangedDate.IsZero() {
		conf.ChangedDate = time.Now().UTC()
	}
	var samlConfID *int
	if conf.SAMLConfigurationID != 0 {
		samlConfID = &conf.SAMLConfigurationID
	}

	err = repo.db.QueryRowxContext(ctx,
		`INSERT INTO saml_provider_configs (site_id, slug, name, enabled, changed_by, archived, saml_configuration_id,
		settings, changed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (site_id, slug) WHERE NOT archived DO UPDATE SET name = EXCLUDED.name, enabled = EXCLUDED.enabled,
		changed_by = EXCLUDED.changed_by, archived = EXCLUDED.archived,
		saml_configuration_id = EXCLUDED.saml_configuration_id, settings = EXCLUDED.settings,
		changed_date = EXCLUDED.changed_date
		RETURNING id`,
		conf.SiteID, conf.Slug, conf.Name, conf.Enabled, conf.ChangedBy, conf.Archived, samlConfID,
		types.JSONText(settings), conf.ChangedDate,
	).Scan(&conf.ID)
	if err != nil {
		return saml.ProviderConfig{}, errors.Wrap(err, "upserting saml provider config")
	}
	return conf, nil
}

func (repo *samlRepository) GetConfiguration(ctx context.Context, siteID int, slug string) (saml.Configuration, error) {
	var row configurationRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+configurationColumns+" FROM saml_configurations WHERE site_id = $1 AND slug = $2",
		siteID, slug,
	)
	if err != nil {
		return saml.Configuration{}, trapNoRowsErr(err, saml.ErrConfigurationNotFound, "getting saml configuration")
	}
	return saml.Configuration(row), nil
}

// GetProviderConfig prefers the live config over archived ones.
func (repo *samlRepository) GetProviderConfig(ctx context.Context, siteID int, slug string) (saml.ProviderConfig, error) {
	var row providerConfigRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+providerConfigColumns+` FROM saml_provider_configs WHERE site_id = $1 AND slug = $2
		ORDER BY archived, id DESC LIMIT 1`,
		siteID, slug,
	)
	if err != nil {
		return saml.ProviderConfig{}, trapNoRowsErr(err, saml.ErrConfigurationNotFound, "getting saml provider config")
	}

	conf := saml.ProviderConfig{
		ID:                  row.ID,
		SiteID:              row.SiteID,
		Slug:                row.Slug,
		Name:                row.Name,
		Enabled:             row.Enabled,
		ChangedBy:           row.ChangedBy,
		Archived:            row.Archived,
		SAMLConfigurationID: row.SAMLConfigurationID,
		ChangedDate:         row.ChangedDate,
	}
	if err := row.Settings.Unmarshal(&conf.Settings); err != nil {
		return saml.ProviderConfig{}, errors.Wrap(err, "decoding provider settings")
	}
	return conf, nil
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
