package rest

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/bwise1/earthlens/util/storage"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 1 << 20

func (api *API) UploadRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Use(api.RequireLogin)

	mux.Method(http.MethodPost, "/", Handler(api.UploadImage))
	return mux
}

func (api *API) UploadImage(w http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	if err := api.parseMultipart(w, r); err != nil {
		return api.respondWithError(err, "invalid multipart form or file too large", values.BadRequestBody, &tc)
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		return api.respondWithError(err, "file is required", values.BadRequestBody, &tc)
	}

	url, status, message, err := api.storeImage(r.Context(), header)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(values.Created, "file uploaded successfully", map[string]string{
		"url":      url,
		"filename": header.Filename,
	})
}

func (api *API) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, api.Config.MaxUploadSize+multipartMemory)
	return r.ParseMultipartForm(multipartMemory)
}

// storeImage validates an uploaded image and hands it to the image store.
func (api *API) storeImage(ctx context.Context, header *multipart.FileHeader) (string, string, string, error) {
	if err := storage.ValidateImage(header.Filename, header.Size, api.Config.MaxUploadSize); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidImageType):
			return "", values.BadRequestBody, "file type not allowed, use png, jpg, jpeg or gif", err
		case errors.Is(err, storage.ErrImageTooLarge):
			return "", values.BadRequestBody, "file is too large", err
		default:
			return "", values.BadRequestBody, "file is empty", err
		}
	}

	file, err := header.Open()
	if err != nil {
		return "", values.Error, "unable to read upload", err
	}
	defer file.Close()

	url, err := api.Deps.Images.Save(ctx, header.Filename, file)
	if err != nil {
		return "", values.Error, "unable to store upload", err
	}
	return url, values.Success, "", nil
}
