package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/values"
	"github.com/google/uuid"
)

// GetOrCreateTag returns the existing tag with status success when an equivalent
// name is already stored.
func (api *API) GetOrCreateTag(ctx context.Context, req model.CreateTagRequest) (model.Tag, string, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = util.TrimPtr(req.Description)
	if err := util.ValidateStruct(req); err != nil {
		return model.Tag{}, values.BadRequestBody, "", err
	}

	tag, created, err := api.Tags.GetOrCreateTag(ctx, req)
	if err != nil {
		return model.Tag{}, values.Error, "error creating tag", err
	}
	if !created {
		return tag, values.Success, "tag already exists", nil
	}
	return tag, values.Created, "tag created successfully", nil
}

func (api *API) ListActiveTags(ctx context.Context, params model.TagListParams) (model.TagList, string, string, error) {
	params.Search = strings.TrimSpace(params.Search)
	tags, total, err := api.Tags.ListTags(ctx, params)
	if err != nil {
		return model.TagList{}, values.Error, "error fetching tags", err
	}
	return model.TagList{
		Tags:       tags,
		Pagination: model.NewPagination(params.Page, params.PerPage, total),
	}, values.Success, "tags retrieved", nil
}

func (api *API) FindTags(ctx context.Context, q string, limit int) ([]model.Tag, string, string, error) {
	if !util.NotBlank(q) {
		return nil, values.BadRequestBody, "search query is required", errors.New("empty query")
	}
	tags, err := api.Tags.SearchTags(ctx, q, limit)
	if err != nil {
		return nil, values.Error, "error searching tags", err
	}
	return tags, values.Success, "tags retrieved", nil
}

func (api *API) GetTag(ctx context.Context, id uuid.UUID) (model.Tag, string, string, error) {
	tag, err := api.Tags.GetTagByID(ctx, id)
	if errors.Is(err, ErrTagNotFound) {
		return model.Tag{}, values.NotFound, "tag not found", err
	}
	if err != nil {
		return model.Tag{}, values.Error, "error fetching tag", err
	}
	return tag, values.Success, "tag retrieved", nil
}

func (api *API) EditTag(ctx context.Context, id uuid.UUID, req model.UpdateTagRequest) (model.Tag, string, string, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := util.ValidateStruct(req); err != nil {
		return model.Tag{}, values.BadRequestBody, "", err
	}

	tag, err := api.Tags.UpdateTag(ctx, id, req)
	switch {
	case errors.Is(err, ErrTagNotFound):
		return model.Tag{}, values.NotFound, "tag not found", err
	case errors.Is(err, ErrTagExists):
		return model.Tag{}, values.Conflict, "a tag with that name already exists", err
	case err != nil:
		return model.Tag{}, values.Error, "error updating tag", err
	}
	return tag, values.Success, "tag updated successfully", nil
}
