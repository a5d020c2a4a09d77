package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromStatus_Kinds(t *testing.T) {
	tcs := []struct {
		name   string
		status int
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, UnauthorizedFailure},
		{"forbidden", http.StatusForbidden, ForbiddenFailure},
		{"bad_request", http.StatusBadRequest, ServerRejection},
		{"conflict", http.StatusConflict, ServerRejection},
		{"internal", http.StatusInternalServerError, ServerRejection},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := FromStatus(tc.status, "body text")
			require.Equal(t, tc.want, KindOf(err))
			require.Equal(t, "body text", Detail(err))
		})
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("%s: %w", "controller.Submit", FromStatus(http.StatusConflict, "Name already exists"))

	require.Equal(t, ServerRejection, KindOf(err))
	require.Equal(t, "Name already exists", Detail(err))
	require.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestNetwork_DetailIsTransportText(t *testing.T) {
	err := Network(stderrors.New("dial tcp: connection refused"))

	require.Equal(t, NetworkFailure, KindOf(err))
	require.Equal(t, "dial tcp: connection refused", Detail(err))
	require.Contains(t, err.Error(), "network_failure")
}

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &Error{Kind: UnknownEntityType, Detail: "widget"})

	require.ErrorIs(t, err, ErrUnknownType)
	require.NotErrorIs(t, err, ErrValidation)
}

func TestToHTTP_Mapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"network", Network(stderrors.New("x")), http.StatusBadGateway, "network_failure"},
		{"unauth", FromStatus(401, ""), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", FromStatus(403, ""), http.StatusForbidden, "forbidden"},
		{"rejection_4xx", FromStatus(409, "dup"), http.StatusConflict, "server_rejection"},
		{"rejection_5xx", FromStatus(500, "boom"), http.StatusBadGateway, "server_rejection"},
		{"validation", ErrValidation, http.StatusUnprocessableEntity, "local_validation"},
		{"unknown_type", ErrUnknownType, http.StatusNotFound, "unknown_entity_type"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"foreign", stderrors.New("x"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_AddsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/options", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, FromStatus(http.StatusForbidden, "nope"))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "forbidden", body.Error.Code)
	require.Equal(t, "rid-1", body.Error.RequestID)
}
