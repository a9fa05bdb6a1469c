package public

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookieName = "fd_flash"
	flashTTL        = 2 * time.Minute
	// ブラウザの Cookie 上限 (4KB) に余裕を持たせる
	maxFlashTokenBytes = 3800
)

var errFlashTooLarge = errors.New("flash token exceeds cookie size limit")

// flashMessage は投稿結果を PRG のリダイレクト先へ渡すための内容。
type flashMessage struct {
	Reply     string
	ModelUsed string
	AIWarning string
}

type flashClaims struct {
	jwt.RegisteredClaims
	Reply     string `json:"reply"`
	ModelUsed string `json:"modelUsed,omitempty"`
	AIWarning string `json:"aiWarning,omitempty"`
}

// flashCodec は flashMessage を HS256 署名付き JWT として Cookie に載せる。
type flashCodec struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func newFlashCodec(secret []byte, secure bool) *flashCodec {
	return &flashCodec{secret: secret, secure: secure, now: time.Now}
}

func (c *flashCodec) encode(msg flashMessage) (string, error) {
	now := c.now()
	claims := flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
		Reply:     msg.Reply,
		ModelUsed: msg.ModelUsed,
		AIWarning: msg.AIWarning,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign flash token: %w", err)
	}
	if len(token) > maxFlashTokenBytes {
		return "", errFlashTooLarge
	}
	return token, nil
}

func (c *flashCodec) decode(token string) (flashMessage, error) {
	claims := &flashClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return flashMessage{}, err
	}
	if !parsed.Valid {
		return flashMessage{}, errors.New("invalid flash token")
	}
	return flashMessage{
		Reply:     claims.Reply,
		ModelUsed: claims.ModelUsed,
		AIWarning: claims.AIWarning,
	}, nil
}

// set は Cookie を書き込む。サイズ超過などで失敗した場合は呼び出し側で直接描画する。
func (c *flashCodec) set(w http.ResponseWriter, msg flashMessage) error {
	token, err := c.encode(msg)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(flashTTL / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// pop は Cookie を読み出して即座に破棄する。無効・期限切れの場合は ok=false。
func (c *flashCodec) pop(w http.ResponseWriter, r *http.Request) (flashMessage, bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return flashMessage{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := c.decode(cookie.Value)
	if err != nil {
		return flashMessage{}, false
	}
	return msg, true
}
