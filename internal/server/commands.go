// ABOUTME: Command dispatch: POST /api/commands/{name} to gateway operations
// ABOUTME: Maps settlements to JSON and records every outcome in the ledger

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/visitlink/chat-bridge/internal/adapter"
	"github.com/visitlink/chat-bridge/internal/auth"
	"github.com/visitlink/chat-bridge/internal/bridge"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/gateway"
	"github.com/visitlink/chat-bridge/internal/store"
)

// errMessageNotFound is returned when a resend or delete names an unknown
// failed message.
var errMessageNotFound = &gateway.Rejection{Code: gateway.RejectionCode, Message: "failed message not found"}

// commandHandler executes one named operation against the gateway.
type commandHandler func(ctx context.Context, payload map[string]any) (any, error)

// handleCommand dispatches POST /api/commands/{name}. The JSON body is the
// operation's argument object; an empty body means no arguments.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	handler, ok := s.commands()[name]
	if !ok {
		s.sendJSONError(w, http.StatusNotFound, "unknown command: "+name)
		return
	}

	payload, err := parsePayload(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultCommandTimeout)
	defer cancel()

	value, err := handler(ctx, payload)
	s.record(r.Context(), name, auth.SubjectFromContext(r.Context()), err)

	if err != nil {
		s.writeCommandError(w, name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "resolved", "value": value})
}

// writeCommandError maps a command failure to its wire shape. Gating
// rejections and backend errors both surface as HTTP 400; the backend
// error keeps its full structure under "message".
func (s *Server) writeCommandError(w http.ResponseWriter, name string, err error) {
	var rej *gateway.Rejection
	if errors.As(err, &rej) {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"code": rej.Code, "message": rej.Message})
		return
	}

	var backendErr *chat.ErrorResponse
	if errors.As(err, &backendErr) {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    gateway.RejectionCode,
			"message": adapter.ErrorToMap(backendErr),
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.sendJSONError(w, http.StatusGatewayTimeout, "command timed out")
		return
	}

	s.logger.Error("command failed", "command", name, "error", err)
	s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
}

// record appends the command outcome to the ledger. Ledger failures are
// logged, never surfaced to the host.
func (s *Server) record(ctx context.Context, operation, subject string, cmdErr error) {
	if s.ledger == nil {
		return
	}

	rec := store.CommandRecord{Operation: operation, Status: store.StatusResolved, Subject: subject}
	if cmdErr != nil {
		var rej *gateway.Rejection
		if errors.As(cmdErr, &rej) {
			rec.Status = store.StatusRejected
		} else {
			rec.Status = store.StatusFailed
		}
		rec.Detail = cmdErr.Error()
	}

	if err := s.ledger.SaveCommand(ctx, rec); err != nil {
		s.logger.Error("failed to record command", "operation", operation, "error", err)
	}
}

func parsePayload(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// await adapts a pending result into the dispatch return shape.
func await[T any](ctx context.Context, res *bridge.Result[T]) (any, error) {
	value, err := res.Await(ctx)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func stringArg(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func boolArg(payload map[string]any, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

// commands is the full operation dispatch table.
func (s *Server) commands() map[string]commandHandler {
	g := s.gateway
	return map[string]commandHandler{
		// Account gateway.
		"init": func(ctx context.Context, p map[string]any) (any, error) {
			if err := g.Initialize(stringArg(p, "accountKey"), stringArg(p, "appID")); err != nil {
				return nil, err
			}
			return gateway.Acknowledged, nil
		},
		"isAccountInitialized": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsAccountInitialized(), nil
		},
		"getAccount": func(ctx context.Context, p map[string]any) (any, error) {
			return await(ctx, g.GetAccount())
		},
		"getCachedAccount": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetCachedAccount()
		},
		"getDepartments": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetDepartments()
		},
		"getAccountStatus": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetAccountStatus()
		},
		"isAccountOffline": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsAccountOffline(), nil
		},
		"observeAccountState": func(ctx context.Context, p map[string]any) (any, error) {
			scope := g.ObserveAccountState()
			return map[string]any{"scopeId": scope.ID()}, nil
		},
		"cancelObserveAccountState": func(ctx context.Context, p map[string]any) (any, error) {
			return g.CancelObserveAccountState(), nil
		},

		// Visitor profile gateway.
		"setVisitorInfo": func(ctx context.Context, p map[string]any) (any, error) {
			input, err := gateway.ParseVisitorInfo(p)
			if err != nil {
				return nil, err
			}
			res, err := g.SetVisitorInfo(input)
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},
		"isVisitorInfoSet": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsVisitorInfoSet(), nil
		},
		"getVisitorInfo": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetVisitorInfo()
		},
		"addVisitorTags": func(ctx context.Context, p map[string]any) (any, error) {
			tags, err := gateway.ParseTags(p["tags"])
			if err != nil {
				return nil, err
			}
			res, err := g.AddVisitorTags(tags)
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},
		"removeVisitorTags": func(ctx context.Context, p map[string]any) (any, error) {
			tags, err := gateway.ParseTags(p["tags"])
			if err != nil {
				return nil, err
			}
			res, err := g.RemoveVisitorTags(tags)
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},

		// Chat session gateway.
		"setDepartment": func(ctx context.Context, p map[string]any) (any, error) {
			res, err := s.dispatchSetDepartment(p)
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},
		"clearDepartment": func(ctx context.Context, p map[string]any) (any, error) {
			res, err := g.ClearDepartment()
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},
		"isDepartmentSet": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsDepartmentSet(), nil
		},
		"startChat": func(ctx context.Context, p map[string]any) (any, error) {
			return g.SendRequestChat(), nil
		},
		"endChat": func(ctx context.Context, p map[string]any) (any, error) {
			return await(ctx, g.EndChat())
		},
		"sendChatRating": func(ctx context.Context, p map[string]any) (any, error) {
			return await(ctx, g.SendChatRating(stringArg(p, "rating")))
		},
		"sendChatComment": func(ctx context.Context, p map[string]any) (any, error) {
			return await(ctx, g.SendChatComment(stringArg(p, "comment")))
		},
		"sendEmailTranscript": func(ctx context.Context, p map[string]any) (any, error) {
			return await(ctx, g.SendEmailTranscript(stringArg(p, "email")))
		},
		"sendOfflineForm": func(ctx context.Context, p map[string]any) (any, error) {
			res, err := g.SendOfflineForm(stringArg(p, "message"))
			if err != nil {
				return nil, err
			}
			return await(ctx, res)
		},
		"getChatState": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatState(), nil
		},
		"getChatId": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatID(), nil
		},
		"getAgents": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetAgents(), nil
		},
		"getChatLogs": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatLogs(), nil
		},
		"getChatSessionStatus": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatSessionStatus(), nil
		},
		"isChatting": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsChatting(), nil
		},
		"getQueuePosition": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetQueuePosition(), nil
		},
		"getChatComment": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatComment(), nil
		},
		"getChatRating": func(ctx context.Context, p map[string]any) (any, error) {
			return g.GetChatRating(), nil
		},
		"getDepartment": func(ctx context.Context, p map[string]any) (any, error) {
			department, ok := g.GetDepartment()
			if !ok {
				return nil, nil
			}
			return department, nil
		},
		"isDepartmentOffline": func(ctx context.Context, p map[string]any) (any, error) {
			return g.IsDepartmentOffline(), nil
		},
		"observeChatState": func(ctx context.Context, p map[string]any) (any, error) {
			scope := g.ObserveChatState()
			return map[string]any{"scopeId": scope.ID()}, nil
		},
		"cancelObserveChatState": func(ctx context.Context, p map[string]any) (any, error) {
			return g.CancelObserveChatState(), nil
		},

		// Messaging gateway.
		"sendMessage": func(ctx context.Context, p map[string]any) (any, error) {
			return g.SendMessage(stringArg(p, "message")), nil
		},
		"reSendMessage": func(ctx context.Context, p map[string]any) (any, error) {
			entry, ok := g.ReSendMessage(stringArg(p, "failedMessageId"))
			if !ok {
				return nil, errMessageNotFound
			}
			return entry, nil
		},
		"deleteFailedMessage": func(ctx context.Context, p map[string]any) (any, error) {
			if !g.DeleteFailedMessage(stringArg(p, "failedMessageId")) {
				return nil, errMessageNotFound
			}
			return gateway.Acknowledged, nil
		},
		"setTyping": func(ctx context.Context, p map[string]any) (any, error) {
			g.SetTyping(boolArg(p, "typing"))
			return gateway.Acknowledged, nil
		},
	}
}

// dispatchSetDepartment routes the two setDepartment overloads: a string
// department selects by name, a number selects by identifier.
func (s *Server) dispatchSetDepartment(p map[string]any) (*bridge.Result[string], error) {
	switch department := p["department"].(type) {
	case string:
		return s.gateway.SetDepartmentByName(department)
	case float64:
		return s.gateway.SetDepartmentByID(int64(department))
	default:
		return nil, &gateway.Rejection{Code: gateway.RejectionCode, Message: "department name or id required"}
	}
}
