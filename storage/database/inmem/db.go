package inmemdb

import (
	"sync"

	"github.com/nelc/eoxnelp/core/saml"
	"github.com/nelc/eoxnelp/core/user"
)

type (
	DB struct {
		user *userTable
		saml *samlTables
	}

	userTable struct {
		sync.RWMutex
		pkCount     int
		table       map[int]*user.User
		socialAuth  []user.SocialAuth
		courseRoles []user.CourseAccessRole
	}

	samlTables struct {
		sync.RWMutex
		pkCount        int
		sites          map[int]saml.Site
		templates      map[int]*saml.Template
		configurations map[string]saml.Configuration  // site id + slug
		providers      map[string]saml.ProviderConfig // site id + slug
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[int]*user.User)},
		saml: &samlTables{
			sites:          make(map[int]saml.Site),
			templates:      make(map[int]*saml.Template),
			configurations: make(map[string]saml.Configuration),
			providers:      make(map[string]saml.ProviderConfig),
		},
	}
}
