package translationcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/commands"
	"github.com/goliatone/go-translatable/internal/posts"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	translateMessageType     = "translatable.post.translate"
	translateManyMessageType = "translatable.post.translate_many"
	deleteMessageType        = "translatable.post.delete"
)

var localeRules = []validation.Rule{validation.Required, validation.Length(2, 35)}

// TranslateCommand sets one attribute of a post in one locale and saves it.
type TranslateCommand struct {
	PostID    uuid.UUID `json:"post_id"`
	Attribute string    `json:"attribute"`
	Locale    string    `json:"locale"`
	Value     *string   `json:"value"`
}

// Type implements command.Message.
func (TranslateCommand) Type() string { return translateMessageType }

// Validate ensures the command names a post, an attribute and a locale.
func (m TranslateCommand) Validate() error {
	errs := validation.Errors{
		"attribute": validation.Validate(m.Attribute, validation.Required),
		"locale":    validation.Validate(m.Locale, localeRules...),
	}
	if m.PostID == uuid.Nil {
		errs["post_id"] = validation.NewError("translatable.translate.post_id_required", "post_id is required")
	}
	return errs.Filter()
}

// TranslateManyCommand sets several attributes of a post in one locale with
// a single save.
type TranslateManyCommand struct {
	PostID uuid.UUID          `json:"post_id"`
	Locale string             `json:"locale"`
	Values map[string]*string `json:"values"`
}

// Type implements command.Message.
func (TranslateManyCommand) Type() string { return translateManyMessageType }

func (m TranslateManyCommand) Validate() error {
	errs := validation.Errors{
		"locale": validation.Validate(m.Locale, localeRules...),
		"values": validation.Validate(m.Values, validation.Required),
	}
	if m.PostID == uuid.Nil {
		errs["post_id"] = validation.NewError("translatable.translate_many.post_id_required", "post_id is required")
	}
	return errs.Filter()
}

// DeletePostCommand deletes a post. Soft deletes keep its translations,
// forced deletes remove them.
type DeletePostCommand struct {
	PostID uuid.UUID `json:"post_id"`
	Force  bool      `json:"force"`
}

// Type implements command.Message.
func (DeletePostCommand) Type() string { return deleteMessageType }

func (m DeletePostCommand) Validate() error {
	if m.PostID == uuid.Nil {
		return validation.Errors{
			"post_id": validation.NewError("translatable.delete.post_id_required", "post_id is required"),
		}
	}
	return nil
}

// NewTranslateHandler returns a handler translating one post attribute.
func NewTranslateHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TranslateCommand]) *commands.Handler[TranslateCommand] {
	opts = append([]commands.HandlerOption[TranslateCommand]{
		commands.WithLogger[TranslateCommand](logger),
		commands.WithOperation[TranslateCommand]("translate"),
	}, opts...)
	return commands.NewHandler[TranslateCommand](func(ctx context.Context, msg TranslateCommand) error {
		post, err := service.Get(ctx, msg.PostID)
		if err != nil {
			return err
		}
		return post.Capability().Translate(ctx, msg.Attribute, optional(msg.Value), msg.Locale)
	}, opts...)
}

// NewTranslateManyHandler returns a handler translating several attributes.
func NewTranslateManyHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TranslateManyCommand]) *commands.Handler[TranslateManyCommand] {
	opts = append([]commands.HandlerOption[TranslateManyCommand]{
		commands.WithLogger[TranslateManyCommand](logger),
		commands.WithOperation[TranslateManyCommand]("translate_many"),
	}, opts...)
	return commands.NewHandler[TranslateManyCommand](func(ctx context.Context, msg TranslateManyCommand) error {
		post, err := service.Get(ctx, msg.PostID)
		if err != nil {
			return err
		}
		values := make(map[string]any, len(msg.Values))
		for attribute, value := range msg.Values {
			values[attribute] = optional(value)
		}
		return post.Capability().TranslateMany(ctx, values, msg.Locale)
	}, opts...)
}

// NewDeletePostHandler returns a handler deleting posts.
func NewDeletePostHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePostCommand]) *commands.Handler[DeletePostCommand] {
	opts = append([]commands.HandlerOption[DeletePostCommand]{
		commands.WithLogger[DeletePostCommand](logger),
		commands.WithOperation[DeletePostCommand]("delete"),
	}, opts...)
	return commands.NewHandler[DeletePostCommand](func(ctx context.Context, msg DeletePostCommand) error {
		if msg.Force {
			return service.ForceDelete(ctx, msg.PostID)
		}
		return service.Delete(ctx, msg.PostID)
	}, opts...)
}

func optional(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
