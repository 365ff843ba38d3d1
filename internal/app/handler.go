package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/google/uuid"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
	"github.com/iamvkosarev/chat-relay-lambda/internal/usecase"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
	"github.com/sourcegraph/conc/panics"
)

const (
	defaultRegion = "us-east-1"

	claimEmail    = "email"
	claimUsername = "cognito:username"
)

type AppDeps struct {
	Relay  *usecase.RelayUsecase
	Usage  *usecase.UsageUsecase
	Logger *slog.Logger
}

type App struct {
	AppDeps
}

func NewApp(deps AppDeps) *App {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Usage == nil {
		deps.Usage = usecase.NewUsageUsecase(usecase.UsageUsecaseDeps{})
	}
	return &App{AppDeps: deps}
}

type successBody struct {
	Success             bool            `json:"success"`
	Response            string          `json:"response"`
	ConversationHistory []model.Message `json:"conversationHistory"`
}

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handle serves one API Gateway invocation. Every failure, panics included, is
// reported as a 500 envelope, so the returned error is always nil.
func (a *App) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	exchangeID := exchangeIDFromContext(ctx)
	log := a.Logger.With("exchange_id", exchangeID.String(), "region", regionFromContext(ctx))
	ctx = logger.WithContext(ctx, log)

	claims := claimsFromEvent(event)
	if claims != nil {
		log.Info("Authenticated user", "user", claims.Identity())
	}

	var (
		reply model.ChatReply
		err   error
	)
	var catcher panics.Catcher
	catcher.Try(
		func() {
			reply, err = a.relay(ctx, log, event)
		},
	)
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}
	if err != nil {
		log.Error("Error", "error", err)
		return failureResponse(err), nil
	}

	usage, recorded, err := a.Usage.Record(ctx, claims, exchangeID)
	if err != nil {
		log.Warn("Failed to record usage", "error", err)
	} else if recorded {
		log.Debug("Usage recorded", "user", usage.User, "exchanges", usage.Exchanges)
	}

	return successResponse(log, reply), nil
}

func (a *App) relay(ctx context.Context, log *slog.Logger, event events.APIGatewayProxyRequest) (model.ChatReply, error) {
	req, err := decodeChatRequest(event)
	if err != nil {
		return model.ChatReply{}, err
	}
	log.Debug("The request body", "body", event.Body)
	return a.Relay.Relay(ctx, req)
}

func decodeChatRequest(event events.APIGatewayProxyRequest) (model.ChatRequest, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return model.ChatRequest{}, fmt.Errorf("failed to decode base64 request body: %w", err)
		}
		body = decoded
	}

	var req model.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return model.ChatRequest{}, fmt.Errorf("failed to parse request body: %w", err)
	}
	return req, nil
}

// claimsFromEvent reads the Cognito claims attached by the authorizer. It returns nil
// when the authorizer attached none.
func claimsFromEvent(event events.APIGatewayProxyRequest) *model.Claims {
	raw, ok := event.RequestContext.Authorizer["claims"].(map[string]interface{})
	if !ok {
		return nil
	}
	claims := &model.Claims{}
	claims.Email, _ = raw[claimEmail].(string)
	claims.Username, _ = raw[claimUsername].(string)
	return claims
}

func exchangeIDFromContext(ctx context.Context) uuid.UUID {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		if id, err := uuid.Parse(lc.AwsRequestID); err == nil {
			return id
		}
	}
	return uuid.New()
}

func regionFromContext(ctx context.Context) string {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return defaultRegion
	}
	return regionFromARN(lc.InvokedFunctionArn)
}

// regionFromARN extracts the region of a Lambda function ARN
// (arn:aws:lambda:<region>:<account>:function:<name>).
func regionFromARN(functionARN string) string {
	parsed, err := arn.Parse(functionARN)
	if err != nil || parsed.Partition != "aws" || parsed.Service != "lambda" || parsed.Region == "" {
		return defaultRegion
	}
	return parsed.Region
}

func responseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "OPTIONS,POST",
	}
}

func successResponse(log *slog.Logger, reply model.ChatReply) events.APIGatewayProxyResponse {
	body, err := json.Marshal(
		successBody{
			Success:             true,
			Response:            reply.Response,
			ConversationHistory: reply.ConversationHistory,
		},
	)
	if err != nil {
		log.Error("Error", "error", err)
		return failureResponse(fmt.Errorf("failed to marshal response: %w", err))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders(),
		Body:       string(body),
	}
}

func failureResponse(err error) events.APIGatewayProxyResponse {
	// a struct of two plain fields always marshals
	body, _ := json.Marshal(
		failureBody{
			Success: false,
			Error:   err.Error(),
		},
	)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    responseHeaders(),
		Body:       string(body),
	}
}
