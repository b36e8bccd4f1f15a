// internal/adapters/in/http/handler/token_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"tokenforge/internal/adapters/in/http/middleware"
	tcapp "tokenforge/internal/application/tokenCreation"
	tcdom "tokenforge/internal/domain/tokenCreation"
)

const (
	maxFormBytes  = 10 << 20
	maxIconBytes  = 5 << 20
	iconFormField = "image"

	defaultDecimals = "9"
	defaultSupply   = "1000"
)

// TokenService はハンドラが使うユースケースの最小 IF です。
type TokenService interface {
	Create(ctx context.Context, req tcdom.TokenCreationRequest, requestedBy string) (tcdom.WorkflowResult, error)
	RevokeAuthority(ctx context.Context, mintAddress string, kind tcapp.AuthorityKind) (tcapp.OperationResult, error)
	MintSupply(ctx context.Context, mintAddress, receiverAddress, amount string) (tcapp.OperationResult, error)
	GetRecord(ctx context.Context, mintAddress string) (tcdom.TokenRecord, error)
	Quote(revokeMint, revokeFreeze bool) tcdom.FeeQuote
	SignerAddress() string
}

// NotificationSource は 1 リクエスト中に出た通知を取り出します（任意）。
type NotificationSource interface {
	Drain() []tcdom.Notification
}

// TokenHandler は /v1 以下のトークン API です。
// 送信系（create / revoke / mint）は同時に 1 件だけ受け付け、実行中は 409 を返します。
type TokenHandler struct {
	svc   TokenService
	notes NotificationSource

	inFlight sync.Mutex
}

func NewTokenHandler(svc TokenService, notes NotificationSource) *TokenHandler {
	return &TokenHandler{svc: svc, notes: notes}
}

// Routes mounts the token API on r.
func (h *TokenHandler) Routes(r chi.Router) {
	r.Get("/fees", h.getFees)
	r.Post("/tokens", h.createToken)
	r.Get("/tokens/{mint}", h.getToken)
	r.Post("/tokens/{mint}/revoke", h.revokeAuthority)
	r.Post("/tokens/{mint}/mint", h.mintSupply)
}

// ------------------------------------------------------------
// GET /v1/fees?revokeMint=true&revokeFreeze=false
// ------------------------------------------------------------

type feesResponse struct {
	tcdom.FeeQuote
	Signer string `json:"signer,omitempty"`
}

func (h *TokenHandler) getFees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quote := h.svc.Quote(parseBool(q.Get("revokeMint")), parseBool(q.Get("revokeFreeze")))
	writeJSON(w, http.StatusOK, feesResponse{FeeQuote: quote, Signer: h.svc.SignerAddress()})
}

// ------------------------------------------------------------
// POST /v1/tokens (multipart/form-data)
// ------------------------------------------------------------

type createResponse struct {
	MintAddress   string               `json:"mintAddress"`
	Signature     string               `json:"signature"`
	ImageURI      string               `json:"imageUri"`
	MetadataURI   string               `json:"metadataUri"`
	FeeLamports   uint64               `json:"feeLamports"`
	FeeSOL        string               `json:"feeSol"`
	ExplorerURL   string               `json:"explorerUrl"`
	Notifications []tcdom.Notification `json:"notifications,omitempty"`
}

func (h *TokenHandler) createToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", "multipart form is required", "")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req, status, err := parseCreateForm(r)
	if err != nil {
		writeError(w, status, "invalid_form", err.Error(), "")
		return
	}

	if !h.inFlight.TryLock() {
		writeError(w, http.StatusConflict, "busy", "another transaction is in progress", "")
		return
	}
	defer h.inFlight.Unlock()
	h.drain()

	res, err := h.svc.Create(r.Context(), req, middleware.UID(r))
	notes := h.drain()
	if err != nil {
		h.writeWorkflowError(w, err, notes)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		MintAddress:   res.MintAddress,
		Signature:     res.Signature,
		ImageURI:      res.ImageURI,
		MetadataURI:   res.MetadataURI,
		FeeLamports:   res.FeeLamports,
		FeeSOL:        tcdom.FormatSOL(res.FeeLamports),
		ExplorerURL:   res.ExplorerURL,
		Notifications: notes,
	})
}

type formError string

func (e formError) Error() string { return string(e) }

// parseCreateForm は未入力の decimals / initialSupply に既定値を入れます。
// 数値にならない decimals は範囲外として扱い、検証側で InvalidDecimals にします。
func parseCreateForm(r *http.Request) (tcdom.TokenCreationRequest, int, error) {
	decimalsRaw := strings.TrimSpace(r.FormValue("decimals"))
	if decimalsRaw == "" {
		decimalsRaw = defaultDecimals
	}
	decimals, err := strconv.Atoi(decimalsRaw)
	if err != nil {
		decimals = -1
	}

	supply := strings.TrimSpace(r.FormValue("initialSupply"))
	if supply == "" {
		supply = strings.TrimSpace(r.FormValue("amount"))
	}
	if supply == "" {
		supply = defaultSupply
	}

	req := tcdom.TokenCreationRequest{
		Name:          r.FormValue("name"),
		Symbol:        r.FormValue("symbol"),
		Description:   r.FormValue("description"),
		Decimals:      decimals,
		InitialSupply: supply,
		RevokeMint:    parseBool(r.FormValue("revokeMint")),
		RevokeFreeze:  parseBool(r.FormValue("revokeFreeze")),
	}

	file, hdr, err := r.FormFile(iconFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// アイコン無しは検証側で MissingIcon
		return req, 0, nil
	case err != nil:
		return req, http.StatusBadRequest, formError("invalid icon upload")
	}
	defer file.Close()

	if hdr.Size > maxIconBytes {
		return req, http.StatusRequestEntityTooLarge, formError("icon is too large")
	}
	data, err := io.ReadAll(io.LimitReader(file, maxIconBytes+1))
	if err != nil {
		return req, http.StatusBadRequest, formError("failed to read icon")
	}
	if len(data) > maxIconBytes {
		return req, http.StatusRequestEntityTooLarge, formError("icon is too large")
	}

	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	req.Icon = tcdom.Icon{FileName: hdr.Filename, ContentType: ct, Data: data}
	return req, 0, nil
}

// ------------------------------------------------------------
// GET /v1/tokens/{mint}
// ------------------------------------------------------------

func (h *TokenHandler) getToken(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetRecord(r.Context(), chi.URLParam(r, "mint"))
	if err != nil {
		switch {
		case errors.Is(err, tcdom.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "not_found", "token record not found", "")
		case tcdom.Classify(err) == "validation":
			writeError(w, http.StatusBadRequest, "validation", tcdom.UserMessage(err), "")
		default:
			log.Printf("[token_handler] get record failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to load token record", "")
		}
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

type recordResponse struct {
	ID            string `json:"id"`
	MintAddress   string `json:"mintAddress"`
	Signature     string `json:"signature"`
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      int    `json:"decimals"`
	InitialSupply string `json:"initialSupply"`
	MetadataURI   string `json:"metadataUri"`
	ImageURI      string `json:"imageUri"`
	RevokedMint   bool   `json:"revokedMint"`
	RevokedFreeze bool   `json:"revokedFreeze"`
	FeeLamports   uint64 `json:"feeLamports"`
	RequestedBy   string `json:"requestedBy,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func toRecordResponse(v tcdom.TokenRecord) recordResponse {
	return recordResponse{
		ID:            v.ID,
		MintAddress:   v.MintAddress,
		Signature:     v.Signature,
		Owner:         v.Owner,
		Name:          v.Name,
		Symbol:        v.Symbol,
		Decimals:      v.Decimals,
		InitialSupply: v.InitialSupply,
		MetadataURI:   v.MetadataURI,
		ImageURI:      v.ImageURI,
		RevokedMint:   v.RevokedMint,
		RevokedFreeze: v.RevokedFreeze,
		FeeLamports:   v.FeeLamports,
		RequestedBy:   v.RequestedBy,
		CreatedAt:     v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ------------------------------------------------------------
// POST /v1/tokens/{mint}/revoke   {"authority":"mint"|"freeze"}
// POST /v1/tokens/{mint}/mint     {"receiver":"...","amount":"12.5"}
// ------------------------------------------------------------

type revokeRequest struct {
	Authority string `json:"authority"`
}

type mintRequest struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type operationResponse struct {
	tcapp.OperationResult
	Notifications []tcdom.Notification `json:"notifications,omitempty"`
}

func (h *TokenHandler) revokeAuthority(w http.ResponseWriter, r *http.Request) {
	var body revokeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body", "")
		return
	}
	kind, err := tcapp.ParseAuthorityKind(body.Authority)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_authority", err.Error(), "")
		return
	}

	h.runOperation(w, func() (tcapp.OperationResult, error) {
		return h.svc.RevokeAuthority(r.Context(), chi.URLParam(r, "mint"), kind)
	})
}

func (h *TokenHandler) mintSupply(w http.ResponseWriter, r *http.Request) {
	var body mintRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body", "")
		return
	}

	h.runOperation(w, func() (tcapp.OperationResult, error) {
		return h.svc.MintSupply(r.Context(), chi.URLParam(r, "mint"), body.Receiver, body.Amount)
	})
}

func (h *TokenHandler) runOperation(w http.ResponseWriter, op func() (tcapp.OperationResult, error)) {
	if !h.inFlight.TryLock() {
		writeError(w, http.StatusConflict, "busy", "another transaction is in progress", "")
		return
	}
	defer h.inFlight.Unlock()
	h.drain()

	res, err := op()
	notes := h.drain()
	if err != nil {
		h.writeWorkflowError(w, err, notes)
		return
	}
	writeJSON(w, http.StatusOK, operationResponse{OperationResult: res, Notifications: notes})
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func (h *TokenHandler) drain() []tcdom.Notification {
	if h.notes == nil {
		return nil
	}
	return h.notes.Drain()
}

type errorResponse struct {
	Error         string               `json:"error"`
	Message       string               `json:"message"`
	Signature     string               `json:"signature,omitempty"`
	Notifications []tcdom.Notification `json:"notifications,omitempty"`
}

// statusFor maps the error class onto an HTTP status.
func statusFor(err error) int {
	switch tcdom.Classify(err) {
	case "validation":
		var ve *tcdom.ValidationError
		if errors.As(err, &ve) && ve.Kind == tcdom.WalletNotConnected {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadRequest
	case "upload", "submission":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *TokenHandler) writeWorkflowError(w http.ResponseWriter, err error, notes []tcdom.Notification) {
	resp := errorResponse{
		Error:         tcdom.Classify(err),
		Message:       tcdom.UserMessage(err),
		Notifications: notes,
	}
	var se *tcdom.SubmissionError
	if errors.As(err, &se) {
		resp.Signature = se.Signature
	}
	writeJSON(w, statusFor(err), resp)
}

func writeError(w http.ResponseWriter, status int, code, msg, sig string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg, Signature: sig})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
