// Package fakevault is a small in-memory stand-in for the parts of the Vault
// HTTP API used by the provisioner: AppRole role and secret IDs, AppRole and
// userpass logins, and kv v1/v2 reads.
package fakevault

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/vault/api"
)

// Vault is the fake server's state.
type Vault struct {
	t *testing.T

	kv1       map[string]map[string]any
	kv2       map[string]map[string]any
	roleIDs   map[string]string
	secretIDs map[string]map[string]bool
	users     map[string]string
	failures  map[string]int
	requests  []string

	mu sync.Mutex
}

// New returns an empty fake Vault, and a client configured to talk to it.
func New(t *testing.T) (*Vault, *api.Client) {
	v := &Vault{
		t:         t,
		kv1:       map[string]map[string]any{},
		kv2:       map[string]map[string]any{},
		roleIDs:   map[string]string{},
		secretIDs: map[string]map[string]bool{},
		users:     map[string]string{},
		failures:  map[string]int{},
	}

	return v, FakeVault(t, v)
}

// FakeVault serves handler, and returns a client configured to use it.
func FakeVault(t *testing.T, handler http.Handler) *api.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr := &http.Transport{
		Proxy: func(_ *http.Request) (*url.URL, error) {
			return url.Parse(srv.URL)
		},
	}
	httpClient := &http.Client{Transport: tr}
	config := &api.Config{Address: srv.URL, HttpClient: httpClient}

	c, _ := api.NewClient(config)

	return c
}

// AddRole registers an AppRole role at auth/<mount>/role/<name>.
func (v *Vault) AddRole(mount, name, roleID string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := "auth/" + mount + "/role/" + name
	v.roleIDs[p] = roleID
	v.secretIDs[p] = map[string]bool{}
}

// AddUser registers a userpass user.
func (v *Vault) AddUser(name, password string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.users[name] = password
}

// PutKV stores data at path in the kv engine mounted at mount.
func (v *Vault) PutKV(mount string, version int, path string, data map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := mount + "/" + path
	if version == 2 {
		v.kv2[key] = data
	} else {
		v.kv1[key] = data
	}
}

// Fail makes every request to the API path (e.g.
// "auth/approle/role/admin/role-id") answer with the given status.
func (v *Vault) Fail(path string, status int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.failures[path] = status
}

// Requests returns every request received so far, as "METHOD path".
func (v *Vault) Requests() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]string(nil), v.requests...)
}

// SecretIDs returns the secret IDs generated for the given role path.
func (v *Vault) SecretIDs(rolePath string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids := []string{}
	for id := range v.secretIDs[rolePath] {
		ids = append(ids, id)
	}

	return ids
}

func (v *Vault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := strings.TrimPrefix(r.URL.Path, "/v1/")
	v.requests = append(v.requests, r.Method+" "+p)
	v.t.Logf("fakevault: %s %s", r.Method, p)

	if status, ok := v.failures[p]; ok {
		writeJSON(w, status, map[string]any{"errors": []string{"fake failure"}})

		return
	}

	body := map[string]any{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
		defer r.Body.Close()
	}

	switch {
	case strings.HasSuffix(p, "/role-id") && r.Method == http.MethodGet:
		v.roleID(w, strings.TrimSuffix(p, "/role-id"))
	case strings.HasSuffix(p, "/secret-id") && isWrite(r):
		v.secretID(w, strings.TrimSuffix(p, "/secret-id"))
	case strings.HasPrefix(p, "auth/userpass/login/") && isWrite(r):
		v.userpassLogin(w, strings.TrimPrefix(p, "auth/userpass/login/"), body)
	case strings.HasSuffix(p, "/login") && isWrite(r):
		v.approleLogin(w, strings.TrimSuffix(p, "/login"), body)
	case r.Method == http.MethodGet:
		v.readKV(w, p)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func isWrite(r *http.Request) bool {
	return r.Method == http.MethodPut || r.Method == http.MethodPost
}

func (v *Vault) roleID(w http.ResponseWriter, rolePath string) {
	id, ok := v.roleIDs[rolePath]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{}})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"role_id": id}})
}

func (v *Vault) secretID(w http.ResponseWriter, rolePath string) {
	ids, ok := v.secretIDs[rolePath]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"role does not exist"}})

		return
	}

	id := fmt.Sprintf("secret-%d", len(ids)+1)
	ids[id] = true

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"secret_id":          id,
		"secret_id_accessor": "accessor-" + id,
		"secret_id_ttl":      600,
	}})
}

func (v *Vault) approleLogin(w http.ResponseWriter, mountPath string, body map[string]any) {
	roleID, _ := body["role_id"].(string)
	secretID, _ := body["secret_id"].(string)

	for p, id := range v.roleIDs {
		if !strings.HasPrefix(p, mountPath+"/role/") || id != roleID {
			continue
		}

		if v.secretIDs[p][secretID] {
			writeAuth(w, "approle-token", []string{"admin"})

			return
		}
	}

	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"invalid role or secret ID"}})
}

func (v *Vault) userpassLogin(w http.ResponseWriter, user string, body map[string]any) {
	password, _ := body["password"].(string)

	if pw, ok := v.users[user]; !ok || pw != password {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"invalid username or password"}})

		return
	}

	writeAuth(w, "userpass-token", []string{"admin"})
}

func (v *Vault) readKV(w http.ResponseWriter, p string) {
	if data, ok := v.kv1[p]; ok {
		writeJSON(w, http.StatusOK, map[string]any{"data": data})

		return
	}

	// kv v2 reads go to <mount>/data/<path>
	mount, rest, ok := strings.Cut(p, "/data/")
	if ok {
		if data, ok := v.kv2[mount+"/"+rest]; ok {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"data": data,
				"metadata": map[string]any{
					"created_time":  "2024-01-01T00:00:00Z",
					"deletion_time": "",
					"destroyed":     false,
					"version":       1,
				},
			}})

			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{}})
}

func writeAuth(w http.ResponseWriter, token string, policies []string) {
	writeJSON(w, http.StatusOK, map[string]any{"auth": map[string]any{
		"client_token":   token,
		"accessor":       "accessor-" + token,
		"policies":       policies,
		"lease_duration": 4,
		"renewable":      true,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}
