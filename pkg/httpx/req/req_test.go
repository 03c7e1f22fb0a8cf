package req_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"gem_market/pkg/errcodes"
	"gem_market/pkg/httpx/req"
)

type trackingRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"required"`
	Carrier        string `json:"carrier"`
}

type noteRequest struct {
	Notes string `json:"notes"`
}

func TestRead(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name     string
		body     string
		optional bool
		dest     any
		wantErr  bool
	}{
		{name: "Valid body", body: `{"trackingNumber":"1Z999","carrier":"UPS"}`, dest: &trackingRequest{}},
		{name: "Missing required field", body: `{"carrier":"UPS"}`, dest: &trackingRequest{}, wantErr: true},
		{name: "Broken JSON", body: `{"trackingNumber":`, dest: &trackingRequest{}, wantErr: true},
		{name: "Empty body is required", body: "", dest: &noteRequest{}, wantErr: true},
		{name: "Empty optional body", body: "", optional: true, dest: &noteRequest{}},
		{name: "Empty optional body still validated", body: "", optional: true, dest: &trackingRequest{}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/deals", strings.NewReader(tc.body))

			read := req.Read
			if tc.optional {
				read = req.ReadOptional
			}

			err := read(r, tc.dest)
			if !tc.wantErr {
				rq.NoError(err)
				return
			}

			rq.Error(err)
			rq.True(failure.IsInvalidArgumentError(err))
			rq.Equal(errcodes.ValidationError, failure.Code(err))
		})
	}
}
