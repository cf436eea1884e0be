package image

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestDecodeModelResponse(t *testing.T) {
	img := []byte("png bytes")
	body := `{"images":["` + base64.StdEncoding.EncodeToString(img) + `"]}`

	data, contentType, err := decodeModelResponse([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "image/png" {
		t.Fatalf("content-type=%q", contentType)
	}
	if string(data) != string(img) {
		t.Fatalf("decoded %q", data)
	}
}

func TestDecodeModelResponse_ModelError(t *testing.T) {
	_, _, err := decodeModelResponse([]byte(`{"images":[],"error":"content policy violation"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "content policy violation") {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeModelResponse_NoImages(t *testing.T) {
	if _, _, err := decodeModelResponse([]byte(`{"images":[]}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeModelResponse_BadJSON(t *testing.T) {
	if _, _, err := decodeModelResponse([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
