package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/client/auth"
	"github.com/iudanet/identitykeeper/internal/client/iocli"
	"github.com/iudanet/identitykeeper/internal/client/storage/memory"
	"github.com/iudanet/identitykeeper/internal/crypto"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

const testSecret = "cli-secret"

var testNow = time.UnixMilli(1_700_000_000_000)

// scriptedIO мок ввода-вывода: отдает заготовленные ответы и собирает вывод
type scriptedIO struct {
	*iocli.IOMock
	out    strings.Builder
	inputs []string
	mu     sync.Mutex
}

func newScriptedIO(inputs ...string) *scriptedIO {
	s := &scriptedIO{inputs: inputs}
	next := func(prompt string) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.out.WriteString(prompt)
		if len(s.inputs) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", prompt)
		}
		v := s.inputs[0]
		s.inputs = s.inputs[1:]
		return v, nil
	}
	s.IOMock = &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.out.WriteString(fmt.Sprintln(a...))
		},
		PrintfFunc: func(format string, a ...any) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.out.WriteString(fmt.Sprintf(format, a...))
		},
		ReadInputFunc:    next,
		ReadPasswordFunc: next,
		WriteFunc: func(p []byte) (int, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.out.Write(p)
		},
	}
	return s
}

func (s *scriptedIO) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

func newIdentityMock() *auth.IdentityAPIMock {
	return &auth.IdentityAPIMock{
		ApplyDefaultHeadersFunc: func(h http.Header) {},
		LoginFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
			return &pkgapi.TokenResponse{
				AccessToken:  "a-" + req.UserSelectBy,
				RefreshToken: "r-" + req.UserSelectBy,
				ExpiresAt:    testNow.UnixMilli() + 60_000,
				Profile:      &pkgapi.UserProfile{UserID: "id-" + req.UserSelectBy, UserName: req.UserSelectBy},
			}, nil
		},
		AuthenticateFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
			return nil, fmt.Errorf("not expected")
		},
		RefreshTokensFunc: func(ctx context.Context, tokens models.TokenTriple) (*api.RefreshResult, error) {
			next := models.TokenTriple{AccessToken: "a-next", RefreshToken: "r-next", ExpiresAt: testNow.UnixMilli() + 120_000}
			return &api.RefreshResult{
				Tokens:   &pkgapi.TokenResponse{AccessToken: next.AccessToken, RefreshToken: next.RefreshToken, ExpiresAt: next.ExpiresAt},
				Revision: crypto.RevisionChecksum(next, testSecret),
			}, nil
		},
	}
}

type fakeChecker struct {
	available map[string]bool
	err       error
	calls     []string
}

func (f *fakeChecker) check(kind, value string) (bool, error) {
	f.calls = append(f.calls, kind+":"+value)
	if f.err != nil {
		return false, f.err
	}
	return f.available[value], nil
}

func (f *fakeChecker) CanRegisterUserName(ctx context.Context, userName string) (bool, error) {
	return f.check("username", userName)
}

func (f *fakeChecker) CanRegisterEmail(ctx context.Context, email string) (bool, error) {
	return f.check("email", email)
}

func (f *fakeChecker) CanRegisterMobileNumber(ctx context.Context, mobileNumber, countryCode string) (bool, error) {
	return f.check("phone", mobileNumber+"/"+countryCode)
}

type testEnv struct {
	cli      *Cli
	io       *scriptedIO
	manager  *auth.Manager
	identity *auth.IdentityAPIMock
	checker  *fakeChecker
	now      *time.Time
}

func newTestEnv(t *testing.T, inputs ...string) *testEnv {
	t.Helper()
	now := testNow
	identity := newIdentityMock()
	manager, err := auth.NewManager(context.Background(), identity, memory.New(),
		auth.WithClock(func() time.Time { return now }),
		auth.WithRevisionSecret(testSecret),
	)
	require.NoError(t, err)

	io := newScriptedIO(inputs...)
	checker := &fakeChecker{available: map[string]bool{}}
	return &testEnv{
		cli:      New(manager, checker, io, ""),
		io:       io,
		manager:  manager,
		identity: identity,
		checker:  checker,
		now:      &now,
	}
}

// login выполняет вход с паролем из скрипта
func (e *testEnv) login(t *testing.T, identifier string) {
	t.Helper()
	e.io.inputs = append(e.io.inputs, "pw")
	require.NoError(t, e.cli.Run(context.Background(), "login", []string{identifier}))
}
