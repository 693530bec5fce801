package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/idempotency"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

const testSecret = "middleware-test-secret-32-bytes!!"

// serve mounts a single unary procedure behind the given interceptors.
func serve[Req, Res any](t *testing.T, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), interceptors ...connect.Interceptor) *connect.Client[Req, Res] {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn,
		connect.WithCodec(api.Codec{}),
		connect.WithInterceptors(interceptors...),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return connect.NewClient[Req, Res](server.Client(), server.URL+procedure, connect.WithCodec(api.Codec{}))
}

func echoUser(ctx context.Context, _ *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return connect.NewResponse(&api.GetBalanceResponse{UserID: GetUserID(ctx)}), nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	require.NoError(t, err)

	client := serve(t, api.ExpenseServiceGetBalanceProcedure, echoUser, RequireAuth(jwtManager))

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{"missing header", "", connect.CodeUnauthenticated},
		{"wrong scheme", "Basic " + token, connect.CodeUnauthenticated},
		{"bad token", "Bearer nope", connect.CodeUnauthenticated},
		{"valid token", "Bearer " + token, 0},
		{"lowercase scheme", "bearer " + token, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetBalanceRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			resp, err := client.CallUnary(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", resp.Msg.UserID)
		})
	}
}

func TestRequireAuth_PublicProcedure(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	login := func(ctx context.Context, _ *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
		return connect.NewResponse(&api.LoginResponse{Token: "t"}), nil
	}
	client := serve(t, api.UserServiceLoginProcedure, login, RequireAuth(jwtManager))

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&api.LoginRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Msg.Token)
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fail := func(ctx context.Context, _ *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id required"))
	}
	client := serve(t, api.ExpenseServiceGetBalanceProcedure, fail, LoggingInterceptor(logger))

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&api.GetBalanceRequest{}))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=invalid_argument")
	assert.Contains(t, buf.String(), api.ExpenseServiceGetBalanceProcedure)
}

type rpcObservation struct {
	procedure, code string
}

type fakeObserver struct {
	mu  sync.Mutex
	got []rpcObservation
}

func (f *fakeObserver) ObserveRPC(procedure, code string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, rpcObservation{procedure, code})
}

func TestMetricsInterceptor(t *testing.T) {
	obs := &fakeObserver{}
	calls := 0
	fn := func(ctx context.Context, _ *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
		calls++
		if calls == 2 {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
		}
		return connect.NewResponse(&api.GetBalanceResponse{}), nil
	}
	client := serve(t, api.ExpenseServiceGetBalanceProcedure, fn, MetricsInterceptor(obs))

	_, _ = client.CallUnary(context.Background(), connect.NewRequest(&api.GetBalanceRequest{}))
	_, _ = client.CallUnary(context.Background(), connect.NewRequest(&api.GetBalanceRequest{}))

	assert.Equal(t, []rpcObservation{
		{api.ExpenseServiceGetBalanceProcedure, "ok"},
		{api.ExpenseServiceGetBalanceProcedure, "not_found"},
	}, obs.got)
}

func TestIdempotencyInterceptor(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := idempotency.NewRedisStore(rdb, time.Hour)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var recorded int
	failNext := false
	record := func(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
		if failNext {
			failNext = false
			return nil, connect.NewError(connect.CodeInternal, errors.New("write failed"))
		}
		recorded++
		return connect.NewResponse(&api.RecordExpenseResponse{Expense: &api.Expense{ID: "expense-1"}}), nil
	}
	client := serve(t, api.ExpenseServiceRecordExpenseProcedure, record, IdempotencyInterceptor(store, logger))

	call := func(key string) error {
		req := connect.NewRequest(&api.RecordExpenseRequest{Description: "Dinner"})
		if key != "" {
			req.Header().Set(api.IdempotencyKeyHeader, key)
		}
		_, err := client.CallUnary(context.Background(), req)
		return err
	}

	require.NoError(t, call("abc"))
	err := call("abc")
	require.Error(t, err)
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "expense-1")
	assert.Equal(t, 1, recorded)

	// Without a key every call goes through.
	require.NoError(t, call(""))
	require.NoError(t, call(""))
	assert.Equal(t, 3, recorded)

	// A failed call releases its key.
	failNext = true
	require.Error(t, call("retry-me"))
	require.NoError(t, call("retry-me"))
	assert.Equal(t, 4, recorded)
}
