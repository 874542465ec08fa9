package migrate

import (
	"net/url"
)

const (
	defaultSourcePath   = "modules/dutchauction/database/postgresql/migrations"
	migrationsTableName = "dutch_auction_schema_migrations"
)

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

func cloneURLWithQuery(u *url.URL, query url.Values) *url.URL {
	clone := *u
	q := clone.Query()
	for key, values := range query {
		for _, value := range values {
			q.Set(key, value)
		}
	}
	clone.RawQuery = q.Encode()
	return &clone
}
