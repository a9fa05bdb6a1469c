package public

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFlashCodec_RoundTrip(t *testing.T) {
	codec := newFlashCodec([]byte("test-secret"), false)
	msg := flashMessage{Reply: "ありがとうございます", ModelUsed: "models/m1", AIWarning: ""}

	token, err := codec.encode(msg)
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	got, err := codec.decode(token)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if got != msg {
		t.Errorf("decode() = %+v, want %+v", got, msg)
	}
}

func TestFlashCodec_Expired(t *testing.T) {
	codec := newFlashCodec([]byte("test-secret"), false)
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	token, err := codec.encode(flashMessage{Reply: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	codec.now = func() time.Time { return issued.Add(flashTTL + time.Second) }
	if _, err := codec.decode(token); err == nil {
		t.Error("decode() of expired token error = nil, want error")
	}
}

func TestFlashCodec_WrongSecret(t *testing.T) {
	token, err := newFlashCodec([]byte("a"), false).encode(flashMessage{Reply: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newFlashCodec([]byte("b"), false).decode(token); err == nil {
		t.Error("decode() with wrong secret error = nil, want error")
	}
}

func TestFlashCodec_TooLarge(t *testing.T) {
	codec := newFlashCodec([]byte("s"), false)
	_, err := codec.encode(flashMessage{Reply: strings.Repeat("x", 4000)})
	if !errors.Is(err, errFlashTooLarge) {
		t.Errorf("encode() error = %v, want errFlashTooLarge", err)
	}
}

func TestFlashCodec_SetAndPop(t *testing.T) {
	codec := newFlashCodec([]byte("s"), true)

	rec := httptest.NewRecorder()
	if err := codec.set(rec, flashMessage{Reply: "thanks"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	popRec := httptest.NewRecorder()
	msg, ok := codec.pop(popRec, req)
	if !ok || msg.Reply != "thanks" {
		t.Errorf("pop() = %+v, %v", msg, ok)
	}
	cleared := popRec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("pop() should expire the cookie: %+v", cleared)
	}

	if _, ok := codec.pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("pop() without cookie ok = true, want false")
	}
}
