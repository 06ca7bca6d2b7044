package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/api"
	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/pipeline"
	"github.com/quicktalog/quicktalog/internal/store"
	"github.com/quicktalog/quicktalog/internal/svcctx"
)

// GenerateAIRequest is the request body for free-text generation.
type GenerateAIRequest struct {
	Prompt               string           `json:"prompt"`
	FormData             catalog.FormMeta `json:"formData"`
	ShouldGenerateImages bool             `json:"shouldGenerateImages,omitempty"`
}

// GenerateAIResponse is the response for free-text generation.
type GenerateAIResponse struct {
	CatalogueURL string `json:"catalogueUrl"`
	Slug         string `json:"slug"`
}

// GenerateAIEndpoint handles POST /items/ai.
type GenerateAIEndpoint struct{}

func (e *GenerateAIEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/items/ai", e.handler
}

func (e *GenerateAIEndpoint) RequiresInit() bool { return true }

func (e *GenerateAIEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if strings.TrimSpace(req.FormData.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	userID, ok := authenticate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	logger := svcctx.LoggerFrom(ctx)

	cat, err := svcctx.GeneratorFrom(ctx).Generate(ctx, pipeline.Request{
		SourceText:     req.Prompt,
		Meta:           req.FormData,
		Source:         catalog.SourceAI,
		GenerateImages: req.ShouldGenerateImages,
		CreatedBy:      userID,
	})
	if err != nil {
		logger.Error("catalogue generation failed", "user", userID, "error", err)
		writeError(w, generationStatus(err), err.Error())
		return
	}

	st := svcctx.StoreFrom(ctx)
	if err := st.InsertCatalogue(ctx, cat); err != nil {
		logger.Error("catalogue insert failed", "slug", cat.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Usage recording is independent of the catalogue write: a failure here
	// is surfaced even though the catalogue now exists.
	if err := st.RecordUsage(ctx, store.UsageEvent{
		UserID:        userID,
		CatalogueSlug: cat.Slug,
		Source:        catalog.SourceAI,
	}); err != nil {
		logger.Error("usage event insert failed", "slug", cat.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GenerateAIResponse{
		CatalogueURL: catalogueURL(svcctx.PublicBaseURLFrom(ctx), cat.Slug),
		Slug:         cat.Slug,
	})
}

func (e *GenerateAIEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		prompt   string
		name     string
		title    string
		currency string
		theme    string
		subtitle string
		withImgs bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a catalogue from a free-text description",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt is required")
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp GenerateAIResponse
			err := client.Post(ctx, "/items/ai", GenerateAIRequest{
				Prompt: prompt,
				FormData: catalog.FormMeta{
					Name:     name,
					Title:    title,
					Currency: currency,
					Theme:    theme,
					Subtitle: subtitle,
				},
				ShouldGenerateImages: withImgs,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Business description (required)")
	cmd.Flags().StringVar(&name, "name", "", "Business name (required)")
	cmd.Flags().StringVar(&title, "title", "", "Catalogue title")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme name")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Catalogue subtitle")
	cmd.Flags().BoolVar(&withImgs, "images", false, "Fetch item images")
	return cmd
}
