package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/fantanome/api/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GameParams documents the {gameID} path parameter.
type GameParams struct {
	GameID string `path:"gameID"`
}

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               []response
}

type response struct {
	body   any
	status int
	ctype  string
}

func respOK(body any) response               { return response{body: body, status: http.StatusOK} }
func respStatus(code int, body any) response { return response{body: body, status: code} }
func respFail(code int) response             { return response{body: ErrorResponse{}, status: code} }

var operations = []operation{
	{
		method: http.MethodGet, path: "/healthz",
		summary:     "Health check",
		description: "Returns the health status of backend dependencies.",
		resp:        []response{respOK(health.Response{}), respStatus(http.StatusServiceUnavailable, health.Response{})},
	},
	{
		method: http.MethodPost, path: "/api/auth/register",
		summary:     "Register",
		description: "Creates a parent or participant account and returns a bearer token.",
		req:         RegisterRequest{},
		resp:        []response{respStatus(http.StatusCreated, AuthResponse{}), respFail(http.StatusBadRequest), respFail(http.StatusConflict)},
	},
	{
		method: http.MethodPost, path: "/api/auth/login",
		summary:     "Log in",
		description: "Exchanges email and password for a bearer token.",
		req:         LoginRequest{},
		resp:        []response{respOK(AuthResponse{}), respFail(http.StatusUnauthorized)},
	},
	{
		method: http.MethodPost, path: "/api/auth/logout",
		summary:     "Log out",
		description: "Revokes the bearer token used for this request.",
		resp:        []response{respOK(nil), respFail(http.StatusUnauthorized)},
	},
	{
		method: http.MethodGet, path: "/api/auth/me",
		summary:     "Current user",
		description: "Returns the user behind the bearer token.",
		resp:        []response{respOK(UserInfo{}), respFail(http.StatusUnauthorized)},
	},
	{
		method: http.MethodGet, path: "/api/games",
		summary:     "List games",
		description: "Games the caller owns or has joined, newest first. Requires Bearer token.",
		resp:        []response{respOK([]GameResponse{}), respFail(http.StatusUnauthorized)},
	},
	{
		method: http.MethodPost, path: "/api/games",
		summary:     "Create game",
		description: "Creates a game owned by the caller. Parents only.",
		req:         GameRequest{},
		resp: []response{respStatus(http.StatusCreated, GameResponse{}), respFail(http.StatusBadRequest),
			respFail(http.StatusForbidden), respFail(http.StatusConflict), respFail(http.StatusServiceUnavailable)},
	},
	{
		method: http.MethodPost, path: "/api/games/join",
		summary:     "Join game",
		description: "Joins the game behind an invite code. Joining twice is a no-op.",
		req:         JoinRequest{},
		resp:        []response{respOK(GameResponse{}), respFail(http.StatusBadRequest), respFail(http.StatusNotFound)},
	},
	{
		method: http.MethodGet, path: "/api/games/{gameID}",
		summary:     "Get game",
		description: "Members only.",
		req:         GameParams{},
		resp:        []response{respOK(GameResponse{}), respFail(http.StatusForbidden), respFail(http.StatusNotFound)},
	},
	{
		method: http.MethodPut, path: "/api/games/{gameID}",
		summary:     "Update game",
		description: "Owner only. Replaces name and description. A missing revealAt keeps the current reveal time, which cannot change once the results are revealed.",
		req: struct {
			GameParams
			GameRequest
		}{},
		resp: []response{respOK(GameResponse{}), respFail(http.StatusBadRequest), respFail(http.StatusForbidden),
			respFail(http.StatusNotFound), respFail(http.StatusConflict)},
	},
	{
		method: http.MethodDelete, path: "/api/games/{gameID}",
		summary:     "Delete game",
		description: "Owner only. Removes participants and submissions and invalidates the invite code.",
		req:         GameParams{},
		resp:        []response{respStatus(http.StatusNoContent, nil), respFail(http.StatusForbidden), respFail(http.StatusNotFound)},
	},
	{
		method: http.MethodPost, path: "/api/games/{gameID}/invite-code",
		summary:     "Regenerate invite code",
		description: "Owner only. The previous code stops working.",
		req:         GameParams{},
		resp: []response{respOK(InviteCodeResponse{}), respFail(http.StatusForbidden), respFail(http.StatusNotFound),
			respFail(http.StatusServiceUnavailable)},
	},
	{
		method: http.MethodGet, path: "/api/games/{gameID}/invite-code/qr",
		summary:     "Invite QR code",
		description: "Owner only. PNG QR code of the join link.",
		req:         GameParams{},
		resp: []response{{status: http.StatusOK, ctype: "image/png"}, respFail(http.StatusForbidden),
			respFail(http.StatusNotFound)},
	},
	{
		method: http.MethodGet, path: "/api/games/{gameID}/submission",
		summary:     "Get own submission",
		description: "The caller's saved name list for the game.",
		req:         GameParams{},
		resp:        []response{respOK(SubmissionResponse{}), respFail(http.StatusForbidden), respFail(http.StatusNotFound)},
	},
	{
		method: http.MethodPut, path: "/api/games/{gameID}/submission",
		summary:     "Save submission",
		description: "Saves the caller's ordered name list, replacing any earlier one. The owner's list is the parent preference.",
		req: struct {
			GameParams
			SubmissionRequest
		}{},
		resp: []response{respOK(SubmissionResponse{}), respFail(http.StatusBadRequest), respFail(http.StatusForbidden),
			respFail(http.StatusConflict)},
	},
	{
		method: http.MethodGet, path: "/api/games/{gameID}/victory",
		summary:     "Game results",
		description: "Ranked scores. Before the reveal time only the owner may call this; parentPreferences stays empty until the reveal.",
		req:         GameParams{},
		resp: []response{respOK(VictoryResponse{}), respFail(http.StatusUnauthorized), respFail(http.StatusForbidden),
			respFail(http.StatusNotFound)},
	},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Fantanome API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Fantanome baby-name guessing game.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.ctype != "" {
				opts = append(opts, openapi.WithContentType(resp.ctype))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
