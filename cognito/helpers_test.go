package cognito

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test helper to generate RSA key pair
func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

type testJWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func rsaJWK(publicKey *rsa.PublicKey, kid, alg string) testJWK {
	return testJWK{
		Kid: kid,
		Kty: "RSA",
		Alg: alg,
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
	}
}

// mockJWKSServer serves a JWKS document and counts fetches. The handler
// hook, when set, runs before the document is written and may fail the request.
type mockJWKSServer struct {
	*httptest.Server
	hits atomic.Int32
	keys atomic.Pointer[[]testJWK]
	hook atomic.Pointer[jwksHook]
}

type jwksHook func(w http.ResponseWriter, r *http.Request) bool

func newMockJWKSServer(t *testing.T, keys ...testJWK) *mockJWKSServer {
	t.Helper()
	m := &mockJWKSServer{}
	m.setKeys(keys...)
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		if hook := m.hook.Load(); hook != nil && !(*hook)(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"keys": *m.keys.Load()})
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockJWKSServer) setKeys(keys ...testJWK) {
	m.keys.Store(&keys)
}

func (m *mockJWKSServer) setHook(hook jwksHook) {
	m.hook.Store(&hook)
}
