package inmemdb

import (
	"context"
	"sort"
	"strconv"

	"github.com/nelc/eoxnelp/core/saml"
)

type samlRepository struct {
	db *samlTables
}

var _ saml.Repository = (*samlRepository)(nil)

func NewSAMLRepository(db *DB) saml.Repository {
	return &samlRepository{db: db.saml}
}

func siteSlugKey(siteID int, slug string) string {
	return strconv.Itoa(siteID) + "/" + slug
}

func (repo *samlRepository) nextID() int {
	repo.db.pkCount++
	return repo.db.pkCount
}

func (repo *samlRepository) CreateSite(_ context.Context, site saml.Site) (saml.Site, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	site.ID = repo.nextID()
	repo.db.sites[site.ID] = site
	return site, nil
}

func (repo *samlRepository) GetSites(_ context.Context, ids ...int) ([]saml.Site, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sites := make([]saml.Site, 0, len(ids))
	for _, id := range ids {
		site, ok := repo.db.sites[id]
		if !ok {
			return nil, saml.ErrSiteNotFound
		}
		sites = append(sites, site)
	}
	return sites, nil
}

func (repo *samlRepository) SaveTemplate(_ context.Context, t saml.Template) (saml.Template, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range t.SiteIDs {
		if _, ok := repo.db.sites[id]; !ok {
			return saml.Template{}, saml.ErrSiteNotFound
		}
	}
	if t.ID == 0 {
		t.ID = repo.nextID()
	} else if _, ok := repo.db.templates[t.ID]; !ok {
		return saml.Template{}, saml.ErrTemplateNotFound
	}
	t.SiteIDs = uniqueSorted(t.SiteIDs)
	repo.db.templates[t.ID] = &t
	return t, nil
}

func (repo *samlRepository) GetTemplate(_ context.Context, id int) (saml.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.templates[id]; ok {
		return *t, nil
	}
	return saml.Template{}, saml.ErrTemplateNotFound
}

func (repo *samlRepository) GetTemplateByName(_ context.Context, name string) (saml.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.templates {
		if t.Name == name {
			return *t, nil
		}
	}
	return saml.Template{}, saml.ErrTemplateNotFound
}

func (repo *samlRepository) AddTemplateSites(_ context.Context, templateID int, siteIDs ...int) ([]int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.templates[templateID]
	if !ok {
		return nil, saml.ErrTemplateNotFound
	}
	linked := make(map[int]bool, len(t.SiteIDs))
	for _, id := range t.SiteIDs {
		linked[id] = true
	}
	added := make([]int, 0, len(siteIDs))
	for _, id := range uniqueSorted(siteIDs) {
		if _, ok := repo.db.sites[id]; !ok {
			return nil, saml.ErrSiteNotFound
		}
		if !linked[id] {
			added = append(added, id)
		}
	}
	t.SiteIDs = uniqueSorted(append(t.SiteIDs, added...))
	return added, nil
}

func (repo *samlRepository) UpsertConfiguration(_ context.Context, conf saml.Configuration) (saml.Configuration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := siteSlugKey(conf.SiteID, conf.Slug)
	if existing, ok := repo.db.configurations[key]; ok {
		conf.ID = existing.ID
	} else {
		conf.ID = repo.nextID()
	}
	repo.db.configurations[key] = conf
	return conf, nil
}

func (repo *samlRepository) UpsertProviderConfig(_ context.Context, conf saml.ProviderConfig) (saml.ProviderConfig, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := siteSlugKey(conf.SiteID, conf.Slug)
	if existing, ok := repo.db.providers[key]; ok && !existing.Archived {
		conf.ID = existing.ID
	} else {
		conf.ID = repo.nextID()
	}
	repo.db.providers[key] = conf
	return conf, nil
}

func (repo *samlRepository) GetConfiguration(_ context.Context, siteID int, slug string) (saml.Configuration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if conf, ok := repo.db.configurations[siteSlugKey(siteID, slug)]; ok {
		return conf, nil
	}
	return saml.Configuration{}, saml.ErrConfigurationNotFound
}

func (repo *samlRepository) GetProviderConfig(_ context.Context, siteID int, slug string) (saml.ProviderConfig, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if conf, ok := repo.db.providers[siteSlugKey(siteID, slug)]; ok {
		return conf, nil
	}
	return saml.ProviderConfig{}, saml.ErrConfigurationNotFound
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
