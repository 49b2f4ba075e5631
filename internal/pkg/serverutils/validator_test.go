package serverutils

import (
	"strings"
	"testing"

	"legal-qa-be/internal/dto"

	"github.com/google/uuid"
)

func TestValidateRequestAskRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.AskRequest
		wantErr string // empty means valid
	}{
		{
			name: "valid",
			req: dto.AskRequest{
				WorkspaceId: uuid.New().String(),
				Question:    "Is a verbal contract enforceable?",
			},
		},
		{
			name: "missing workspace id",
			req: dto.AskRequest{
				Question: "Is a verbal contract enforceable?",
			},
			wantErr: "WorkspaceId",
		},
		{
			name: "workspace id not a uuid",
			req: dto.AskRequest{
				WorkspaceId: "not-a-uuid",
				Question:    "Is a verbal contract enforceable?",
			},
			wantErr: "WorkspaceId",
		},
		{
			name: "question too short",
			req: dto.AskRequest{
				WorkspaceId: uuid.New().String(),
				Question:    "a",
			},
			wantErr: "Question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not name field %s", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	ok := SuccessResponse("created", map[string]string{"id": "1"})
	if ok.Code != 200 || ok.Message != "created" || ok.Data["id"] != "1" {
		t.Errorf("unexpected success envelope: %+v", ok)
	}

	bad := ErrorResponse(404, "session not found")
	if bad.Code != 404 || bad.Message != "session not found" || bad.Data != nil {
		t.Errorf("unexpected error envelope: %+v", bad)
	}
}
