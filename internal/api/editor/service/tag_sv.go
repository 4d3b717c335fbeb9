package editorService

import (
	"context"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
)

func (s *editorService) AddTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error) {
	return s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		_, err := editor.AddTag(d, tag)
		return err
	})
}

func (s *editorService) AddSuggestedTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error) {
	return s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		_, err := editor.AddSuggestedTag(d, s.settings.TagSuggestions, tag)
		return err
	})
}

func (s *editorService) RemoveTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error) {
	return s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		editor.RemoveTag(d, tag)
		return nil
	})
}

// HandleTagKey stores the in-progress text even when the commit is rejected,
// so the user does not lose what they typed.
func (s *editorService) HandleTagKey(ctx context.Context, creds entity.Credentials, id string, req editor.TagKeyRequest) (entity.Draft, error) {
	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	draft, err := s.loadForEdit(ctx, caller.DoctorID, id)
	if err != nil {
		return entity.Draft{}, err
	}

	_, keyErr := editor.HandleTagKey(&draft, req.Key, req.Text)
	if err := s.saveDraft(ctx, &draft); err != nil {
		return entity.Draft{}, err
	}
	if keyErr != nil {
		return entity.Draft{}, keyErr
	}
	return draft, nil
}
