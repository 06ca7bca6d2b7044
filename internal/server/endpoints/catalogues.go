package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/api"
	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/store"
	"github.com/quicktalog/quicktalog/internal/svcctx"
)

// GetCatalogueEndpoint handles GET /catalogues/{slug}. Published catalogues
// are public, so this route skips authentication.
type GetCatalogueEndpoint struct{}

func (e *GetCatalogueEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/catalogues/{slug}", e.handler
}

func (e *GetCatalogueEndpoint) RequiresInit() bool { return true }

func (e *GetCatalogueEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	cat, err := svcctx.StoreFrom(r.Context()).GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catalogue not found")
			return
		}
		svcctx.LoggerFrom(r.Context()).Error("catalogue lookup failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "catalogue lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (e *GetCatalogueEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Fetch a published catalogue by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp catalog.Catalogue
			if err := client.Get(cmd.Context(), fmt.Sprintf("/catalogues/%s", args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListCataloguesResponse is the response for the owner-scoped list.
type ListCataloguesResponse struct {
	Catalogues []*catalog.Catalogue `json:"catalogues"`
}

// ListCataloguesEndpoint handles GET /catalogues, returning the caller's
// own catalogues newest first.
type ListCataloguesEndpoint struct{}

func (e *ListCataloguesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/catalogues", e.handler
}

func (e *ListCataloguesEndpoint) RequiresInit() bool { return true }

func (e *ListCataloguesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticate(w, r)
	if !ok {
		return
	}
	cats, err := svcctx.StoreFrom(r.Context()).ListByOwner(r.Context(), userID)
	if err != nil {
		svcctx.LoggerFrom(r.Context()).Error("catalogue list failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "catalogue list failed")
		return
	}
	if cats == nil {
		cats = []*catalog.Catalogue{}
	}
	writeJSON(w, http.StatusOK, ListCataloguesResponse{Catalogues: cats})
}

func (e *ListCataloguesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your catalogues",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListCataloguesResponse
			if err := client.Get(cmd.Context(), "/catalogues", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
