// Package captcha verifica tokens de reCAPTCHA contra el endpoint siteverify de Google.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	// DevBypassToken se acepta solo con AllowDevBypass en entornos no prod.
	DevBypassToken = "development-bypass-token"
)

// Mensajes para el usuario final por código de error de Google.
var messages = map[string]string{
	"missing-input-secret":   "Configuration serveur manquante",
	"invalid-input-secret":   "Configuration serveur invalide",
	"missing-input-response": "Vérification CAPTCHA manquante",
	"invalid-input-response": "Vérification CAPTCHA invalide",
	"bad-request":            "Requête de vérification malformée",
	"timeout-or-duplicate":   "Token CAPTCHA expiré ou déjà utilisé",
}

const genericMessage = "Erreur de vérification CAPTCHA"

// Result del chequeo. Reason es el código de Google (o "bypass").
type Result struct {
	Valid   bool
	Reason  string
	Message string
	Bypass  bool
}

type Config struct {
	SecretKey      string        `yaml:"secret_key"`
	VerifyURL      string        `yaml:"verify_url"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowDevBypass bool          `yaml:"allow_dev_bypass"`
	Env            string        `yaml:"-"`
}

type Verifier struct {
	cfg    Config
	client *http.Client
}

func NewVerifier(cfg Config) *Verifier {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Verifier{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (v *Verifier) bypassAllowed() bool {
	return v.cfg.AllowDevBypass && !strings.EqualFold(v.cfg.Env, "prod")
}

type siteverifyResponse struct {
	Success     bool     `json:"success"`
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verify consulta siteverify. Un rechazo de Google es Result{Valid:false};
// solo fallas de transporte o configuración retornan error.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	log := logger.From(ctx).With(logger.Component("captcha"), logger.Op("Verify"))

	if v.cfg.SecretKey == "" {
		if v.bypassAllowed() {
			log.Warn("captcha secret not configured, bypassing (dev)")
			return Result{Valid: true, Reason: "bypass", Bypass: true}, nil
		}
		return Result{}, domain.Configuration("captcha secret key not configured")
	}
	if token == "" {
		return invalid("missing-input-response"), nil
	}
	if token == DevBypassToken && v.bypassAllowed() {
		log.Warn("captcha bypass token accepted (dev)")
		return Result{Valid: true, Reason: "bypass", Bypass: true}, nil
	}

	form := url.Values{"secret": {v.cfg.SecretKey}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, domain.Upstream("recaptcha", true, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, domain.Upstream("recaptcha", resp.StatusCode >= 500, fmt.Errorf("siteverify status %d", resp.StatusCode))
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, domain.Upstream("recaptcha", false, fmt.Errorf("decode siteverify: %w", err))
	}
	if body.Success {
		return Result{Valid: true}, nil
	}

	code := ""
	if len(body.ErrorCodes) > 0 {
		code = body.ErrorCodes[0]
	}
	log.Info("captcha rejected", logger.String("codes", strings.Join(body.ErrorCodes, ",")))
	return invalid(code), nil
}

func invalid(code string) Result {
	msg, ok := messages[code]
	if !ok {
		msg = genericMessage
	}
	return Result{Valid: false, Reason: code, Message: msg}
}
