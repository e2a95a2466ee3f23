package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/RioChndr/ai-resume-analyzer/pkg/errors"
)

func str(s string) *string { return &s }

func extractionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("data")
		require.NoError(t, err, "document must arrive as form field 'data'")
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		payload, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.NotEmpty(t, payload)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestExtractUnwrapsArrayResponse(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `[{"name":"Rio Chandra","email":"rio@example.com","skills":["Go","SQL"]}]`)
	defer srv.Close()

	parsed, err := NewClient(srv.URL).Extract(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, str("Rio Chandra"), parsed.Name)
	assert.Equal(t, str("rio@example.com"), parsed.Email)
	assert.Equal(t, []string{"Go", "SQL"}, parsed.Skills)
	assert.Nil(t, parsed.PhoneNumber)
}

func TestExtractAcceptsBareObject(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `{"phone_number":"+62-822-0000"}`)
	defer srv.Close()

	parsed, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, str("+62-822-0000"), parsed.PhoneNumber)
	assert.Nil(t, parsed.Name)
}

func TestExtractSparseResultIsSuccess(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `[{}]`)
	defer srv.Close()

	parsed, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Nil(t, parsed.Name)
	assert.Nil(t, parsed.Skills)
	assert.Nil(t, parsed.Experiences)
}

func TestExtractEmptyArrayIsServiceError(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `[]`)
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	var svcErr apperrors.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Message, "no data returned")
}

func TestExtractMissingBodyIsServiceError(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, ``)
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	var svcErr apperrors.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Message, "no data returned")
}

func TestExtractNonSuccessStatus(t *testing.T) {
	srv := extractionServer(t, http.StatusInternalServerError, `boom`)
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	var svcErr apperrors.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Contains(t, err.Error(), "500")
}

func TestExtractWrongFieldTypeIsValidationError(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `[{"skills":"not-an-array"}]`)
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	var valErr apperrors.ExtractionValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "skills", valErr.Field)
}

func TestExtractUnknownFieldsIgnored(t *testing.T) {
	srv := extractionServer(t, http.StatusOK, `[{"name":"A","totally_new_field":42}]`)
	defer srv.Close()

	parsed, err := NewClient(srv.URL).Extract(context.Background(), []byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, str("A"), parsed.Name)
}

func TestExtractUnreachableEndpoint(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1/webhook").Extract(context.Background(), []byte("doc"))
	var svcErr apperrors.ExtractionServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Zero(t, svcErr.StatusCode)
}

func TestParsedResumeRoundTrip(t *testing.T) {
	full := ParsedResume{
		Name:        str("Rio Chandra"),
		PhoneNumber: str("+62-822-3047"),
		Email:       str("me@example.com"),
		Skills:      []string{"Leadership", "Go", "TypeScript"},
		Experiences: []Experience{
			{Company: str("PT. Kereta Api Indonesia"), Year: str("2024 - Now"), Description: str("Led the project")},
			{Company: str("Ezclass.io"), Year: str("2024"), Description: nil},
		},
		Education: []Education{
			{Institution: str("Universitas Terbuka"), Degree: str("Sarjana"), Year: str("2024-2026")},
		},
	}

	raw, err := json.Marshal([]ParsedResume{full})
	require.NoError(t, err)

	parsed, err := decodeParsedResume(raw)
	require.NoError(t, err)
	assert.Equal(t, &full, parsed)
}
