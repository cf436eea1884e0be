package handle

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/promptpix/promptpix/internal/image"
	"github.com/promptpix/promptpix/internal/page"
	"github.com/promptpix/promptpix/internal/seed"
	"github.com/promptpix/promptpix/internal/store"
	"github.com/samber/do"
)

const (
	testCompany  = "acme"
	testFallback = "https://img.example.com/static/fallback.gif"
	testBase     = "https://img.example.com"
)

type fakeGenerator struct {
	data  []byte
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, _ image.Params) ([]byte, string, error) {
	g.calls++
	if g.err != nil {
		return nil, "", g.err
	}
	return g.data, "image/png", nil
}

type fakeStore struct {
	objects   map[string][]byte
	uploadErr error
	fetchErr  error
	signErr   error
	uploads   int
	fetches   int
}

func (s *fakeStore) Upload(_ context.Context, params store.UploadParams) error {
	s.uploads++
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[params.Name] = params.Data
	return nil
}

func (s *fakeStore) Fetch(_ context.Context, name string) ([]byte, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return data, nil
}

func (s *fakeStore) SignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://signed.example.com/" + name, nil
}

func newTestInjector(t *testing.T, gen image.Generator, st store.Store, mode string) *do.Injector {
	t.Helper()
	injector := do.New()
	do.ProvideValue[image.Generator](injector, gen)
	do.ProvideValue[store.Store](injector, st)
	do.Provide[*seed.Randomizer](injector, seed.NewRandomizer)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.ProvideNamedValue[string](injector, "company", testCompany)
	do.ProvideNamedValue[string](injector, "delivery_mode", mode)
	do.ProvideNamedValue[string](injector, "fetch_base_url", testBase)
	do.ProvideNamedValue[string](injector, "fallback_image_url", testFallback)
	return injector
}

func newGenerateHandler(t *testing.T, gen image.Generator, st store.Store, mode string) *GenerateHandler {
	t.Helper()
	h, err := NewGenerateHandler(newTestInjector(t, gen, st, mode))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func testContext(requestID string) context.Context {
	return lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: requestID})
}

func generateBody(company string) string {
	return fmt.Sprintf(`{"prompt":"a red fox","client":{"company":%q}}`, company)
}

func TestGenerateHandler_Inline(t *testing.T) {
	img := []byte("fake png bytes")
	gen := &fakeGenerator{data: img}
	st := &fakeStore{}
	h := newGenerateHandler(t, gen, st, ModeInline)

	resp, err := h.Handle(testContext("req-1"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if !resp.IsBase64Encoded {
		t.Fatal("expected base64-encoded body")
	}
	if strings.Contains(resp.Body, "Something went wrong") {
		t.Fatal("success response carries the fallback page")
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(img) {
		t.Fatalf("body decodes to %q", decoded)
	}
	if st.uploads != 0 {
		t.Fatalf("inline mode stored %d objects", st.uploads)
	}
}

func TestGenerateHandler_AccessDenied(t *testing.T) {
	gen := &fakeGenerator{data: []byte("img")}
	st := &fakeStore{}
	h := newGenerateHandler(t, gen, st, ModeInline)

	resp, err := h.Handle(testContext("req-2"), events.APIGatewayProxyRequest{Body: generateBody("not-acme")})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if resp.Body != "Access Denied" {
		t.Fatalf("body=%q", resp.Body)
	}
	if gen.calls != 0 || st.uploads != 0 {
		t.Fatalf("rejected request reached remote services: gen=%d uploads=%d", gen.calls, st.uploads)
	}
}

func TestGenerateHandler_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	h := newGenerateHandler(t, gen, &fakeStore{}, ModeInline)

	resp, err := h.Handle(testContext("req-3"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("failures must stay behind a 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, "Something went wrong") {
		t.Fatalf("body=%q", resp.Body)
	}
	if !strings.Contains(resp.Body, testFallback) {
		t.Fatal("fallback page missing the fallback image link")
	}
}

func TestGenerateHandler_MalformedBody(t *testing.T) {
	gen := &fakeGenerator{data: []byte("img")}
	h := newGenerateHandler(t, gen, &fakeStore{}, ModeInline)

	resp, err := h.Handle(testContext("req-4"), events.APIGatewayProxyRequest{Body: "{not json"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Body, "Something went wrong") {
		t.Fatalf("status=%d body=%q", resp.StatusCode, resp.Body)
	}
	if gen.calls != 0 {
		t.Fatal("malformed request reached the model")
	}
}

func TestGenerateHandler_Signed(t *testing.T) {
	st := &fakeStore{}
	h := newGenerateHandler(t, &fakeGenerator{data: []byte("img")}, st, ModeSigned)

	resp, err := h.Handle(testContext("req-5"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if resp.Body != "https://signed.example.com/req-5.png" {
		t.Fatalf("body=%q", resp.Body)
	}
	if _, ok := st.objects["req-5.png"]; !ok {
		t.Fatal("image not stored under the request id")
	}
}

func TestGenerateHandler_Link(t *testing.T) {
	st := &fakeStore{}
	h := newGenerateHandler(t, &fakeGenerator{data: []byte("img")}, st, ModeLink)

	resp, err := h.Handle(testContext("req-6"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, testBase+"/req-6.png") {
		t.Fatalf("body=%q", resp.Body)
	}
	if resp.Headers["Content-Type"] != "text/html" {
		t.Fatalf("content-type=%q", resp.Headers["Content-Type"])
	}
}

func TestGenerateHandler_UploadError(t *testing.T) {
	st := &fakeStore{uploadErr: errors.New("bucket gone")}
	h := newGenerateHandler(t, &fakeGenerator{data: []byte("img")}, st, ModeSigned)

	resp, err := h.Handle(testContext("req-7"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Body, "Something went wrong") {
		t.Fatalf("status=%d body=%q", resp.StatusCode, resp.Body)
	}
}

func TestGenerateHandler_UniqueNames(t *testing.T) {
	st := &fakeStore{}
	h := newGenerateHandler(t, &fakeGenerator{data: []byte("img")}, st, ModeSigned)

	for _, id := range []string{"req-a", "req-b", "req-c"} {
		if _, err := h.Handle(testContext(id), events.APIGatewayProxyRequest{Body: generateBody(testCompany)}); err != nil {
			t.Fatal(err)
		}
	}
	if len(st.objects) != 3 {
		t.Fatalf("expected 3 distinct objects, got %d", len(st.objects))
	}
}

func TestGenerateThenFetchRoundTrip(t *testing.T) {
	img := []byte("round trip bytes")
	st := &fakeStore{}
	gh := newGenerateHandler(t, &fakeGenerator{data: img}, st, ModeLink)

	if _, err := gh.Handle(testContext("req-rt"), events.APIGatewayProxyRequest{Body: generateBody(testCompany)}); err != nil {
		t.Fatal(err)
	}

	fh, err := NewFetchHandler(newTestInjector(t, &fakeGenerator{}, st, ModeLink))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := fh.Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/req-rt.png"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(img) {
		t.Fatalf("fetched %q, stored %q", decoded, img)
	}
}
