// Package integrationtest provides server and db helpers used in integration tests.
package integrationtest

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-vault/cmd/httpserver"
	"github.com/go-petr/pet-vault/pkg/configpkg"
	"github.com/go-petr/pet-vault/pkg/dbpkg"
	"github.com/go-petr/pet-vault/pkg/randompkg"
	"github.com/go-petr/pet-vault/pkg/web"
)

// SetupServer returns a test server built from the configs directory at root.
//
// setup may adjust the loaded config. With the postgres store the database is
// migrated and flushed before and after the test; the test is skipped when no
// database is reachable.
func SetupServer(t *testing.T, root string, setup func(c *configpkg.Config)) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load(filepath.Join(root, "configs"))
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, root, err)
	}

	if setup != nil {
		setup(&config)
	}

	logger := zerolog.Nop()

	var db *sql.DB

	if config.LedgerStore != configpkg.StoreMemory {
		db = SetupDB(t, config.DBDriver, config.DBSource)

		if err := dbpkg.Migrate(db, filepath.Join(root, config.MigrationsPath), logger); err != nil {
			t.Fatalf("dbpkg.Migrate returned error: %v", err)
		}

		Flush(t, db)
	}

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush empties all vault and user tables without dropping them and restores the vault row.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE TABLE users, vault_state, vault_accounts, vault_events RESTART IDENTITY`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO vault_state (id) VALUES (1)`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Skipf("database is unreachable: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// Do sends a JSON request to server, authorized with token when it is not empty.
func Do(t *testing.T, server http.Handler, method, url, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}

		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	return recorder
}

// Decode decodes the recorded web.Response, filling data when given.
func Decode(t *testing.T, recorder *httptest.ResponseRecorder, data any) web.Response {
	t.Helper()

	res := web.Response{Data: data}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return res
}

// SeedUser registers a random user through the API and returns its username and access token.
func SeedUser(t *testing.T, server http.Handler) (string, string) {
	t.Helper()

	username := randompkg.Owner()

	body := map[string]string{
		"username": username,
		"password": randompkg.String(10),
		"fullname": randompkg.Owner(),
		"email":    randompkg.Email(),
	}

	recorder := Do(t, server, http.MethodPost, "/users", "", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("POST /users: status %d, body %s", recorder.Code, recorder.Body.String())
	}

	res := Decode(t, recorder, nil)

	return username, res.AccessToken
}
