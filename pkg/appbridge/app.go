package appbridge

import "context"

// App is a connector as seen by the runtime. Implementations report their
// failures as *AppError.
type App interface {
	ActionIDs(ctx context.Context) ([]string, error)
	ActionInputSchema(ctx context.Context, ac ActionContext) (string, error)
	ActionOutputSchema(ctx context.Context, ac ActionContext) (string, error)
	ExecuteAction(ctx context.Context, ac ActionContext) (ActionResponse, error)

	TriggerIDs(ctx context.Context) ([]string, error)
	TriggerInputSchema(ctx context.Context, tc TriggerContext) (string, error)
	TriggerOutputSchema(ctx context.Context, tc TriggerContext) (string, error)
	FetchEvents(ctx context.Context, tc TriggerContext) (TriggerResponse, error)
}
