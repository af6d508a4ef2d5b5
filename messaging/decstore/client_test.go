package decstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestClaimName(t *testing.T) {
	var got claimRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/claim" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("body: %v", err)
		}
		fmt.Fprint(w, `"pubkey-of-owner"`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	owner, err := c.ClaimName(context.Background(), "  A+LICE ", "somekey", "somesig")
	if err != nil {
		t.Fatal(err)
	}
	if owner != "pubkey-of-owner" {
		t.Fatalf("owner = %q, want the quotes stripped", owner)
	}
	want := claimRequest{NameCanonical: "alice.test", PublicKey: "somekey", Signature: "somesig"}
	if got != want {
		t.Fatalf("request = %+v, want %+v", got, want)
	}
}

func TestClaimNameDuplicateIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the store answers an exact-duplicate claim with an empty body
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	owner, err := c.ClaimName(context.Background(), "alice", "somekey", "somesig")
	if err != nil {
		t.Fatal(err)
	}
	if owner != "" {
		t.Fatalf("owner = %q, want empty for a duplicate", owner)
	}
}

func TestClaimNamePreconditions(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", nil)
	if _, err := c.ClaimName(context.Background(), "   ", "somekey", "sig"); err == nil {
		t.Fatal("blank name accepted")
	}
	if _, err := c.ClaimName(context.Background(), "alice", "  ", "sig"); err == nil {
		t.Fatal("blank key accepted")
	}
}

func TestClaimNameTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "name is taken differently", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	if _, err := c.ClaimName(context.Background(), "alice", "somekey", "sig"); err == nil {
		t.Fatal("non-200 must be an error on the claim path")
	}
}

func TestGetAddressByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/address" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("name") {
		case "alice.test":
			fmt.Fprint(w, "\"deadbeef\"\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	addr, err := c.GetAddressByName(context.Background(), "alice.test")
	if err != nil {
		t.Fatal(err)
	}
	if addr != "deadbeef" {
		t.Fatalf("address = %q", addr)
	}

	addr, err = c.GetAddressByName(context.Background(), "bob.test")
	if err != nil || addr != "" {
		t.Fatalf("unregistered name: got (%q, %v), want (\"\", nil)", addr, err)
	}

	if _, err := c.GetAddressByName(context.Background(), " "); err == nil {
		t.Fatal("blank name accepted")
	}
}

func TestPut(t *testing.T) {
	payload := []byte("hello blob")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/put" {
			http.NotFound(w, r)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		got, _ := io.ReadAll(file)
		if !bytes.Equal(got, payload) {
			t.Errorf("uploaded %q", got)
		}
		fmt.Fprint(w, "bafyhash\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	hash, err := c.Put(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if hash != "bafyhash" {
		t.Fatalf("hash = %q", hash)
	}
}

func TestGetAndList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get":
			if r.URL.Query().Get("hash") != "bafyhash" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, "hello blob")
		case "/list":
			if r.URL.Query().Get("address") != "someaddr" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, `["bafyhash","otherhash"]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	data, err := c.Get(context.Background(), "bafyhash")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello blob" {
		t.Fatalf("data = %q", data)
	}

	hashes, err := c.List(context.Background(), "someaddr")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(hashes, []string{"bafyhash", "otherhash"}) {
		t.Fatalf("hashes = %v", hashes)
	}

	if _, err := c.Get(context.Background(), " "); err == nil {
		t.Fatal("blank hash accepted")
	}
	if _, err := c.List(context.Background(), ""); err == nil {
		t.Fatal("blank address accepted")
	}
}

func TestSend(t *testing.T) {
	var gotAddr string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotAddr = r.URL.Query().Get("address")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	if err := c.Send(context.Background(), "someaddr", []byte("envelope")); err != nil {
		t.Fatal(err)
	}
	if gotAddr != "someaddr" || string(gotBody) != "envelope" {
		t.Fatalf("sent (%q, %q)", gotAddr, gotBody)
	}

	if err := c.Send(context.Background(), "", nil); err == nil {
		t.Fatal("blank address accepted")
	}
}

func TestListRejectsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	if _, err := c.List(context.Background(), "someaddr"); err == nil {
		t.Fatal("malformed list accepted")
	}
}
