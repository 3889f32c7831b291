package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

func newRubricService(t *testing.T) (RubricService, repository.RubricRepository) {
	db := setupTestDB(t)
	repo := repository.NewRubricRepository(db)
	return NewRubricService(repo, testValidator(), testLogger()), repo
}

func TestCreateTemplateAutoVersions(t *testing.T) {
	service, _ := newRubricService(t)
	ctx := context.Background()

	first, err := service.CreateTemplate(ctx, dto.TemplateCreateRequest{Name: "Defense Rubric"})
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)

	second, err := service.CreateTemplate(ctx, dto.TemplateCreateRequest{Name: "Defense Rubric"})
	require.NoError(t, err)
	require.Equal(t, 2, second.Version, "omitted version continues the name lineage")
}

func TestUpdateTemplateDescriptionThreeStates(t *testing.T) {
	service, _ := newRubricService(t)
	ctx := context.Background()

	var create dto.TemplateCreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Defense Rubric","description":"original"}`), &create))
	template, err := service.CreateTemplate(ctx, create)
	require.NoError(t, err)
	require.Equal(t, "original", *template.Description)

	// Absent key leaves the description untouched.
	var keep dto.TemplateUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"version":2}`), &keep))
	updated, err := service.UpdateTemplate(ctx, template.ID.String(), keep)
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	require.Equal(t, "original", *updated.Description)

	// Explicit null clears it.
	var clear dto.TemplateUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &clear))
	updated, err = service.UpdateTemplate(ctx, template.ID.String(), clear)
	require.NoError(t, err)
	require.Nil(t, updated.Description)

	// A value sets it again.
	var set dto.TemplateUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description":"rewritten"}`), &set))
	updated, err = service.UpdateTemplate(ctx, template.ID.String(), set)
	require.NoError(t, err)
	require.Equal(t, "rewritten", *updated.Description)
}

func TestCreateCriterionAppliesDefaults(t *testing.T) {
	service, _ := newRubricService(t)
	ctx := context.Background()

	template, err := service.CreateTemplate(ctx, dto.TemplateCreateRequest{Name: "Defense Rubric"})
	require.NoError(t, err)

	// Non-numeric weight and bounds are dropped, falling back to defaults.
	var payload dto.CriterionCreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"criterion":"Clarity","weight":"heavy","min_score":null,"max_score":"25"}`), &payload))

	criterion, err := service.CreateCriterion(ctx, template.ID.String(), payload)
	require.NoError(t, err)
	require.Equal(t, float64(1), criterion.Weight)
	require.Equal(t, float64(0), criterion.MinScore)
	require.Equal(t, float64(25), criterion.MaxScore, "numeric strings coerce")
}

func TestListCriteriaMalformedFilterListsEverything(t *testing.T) {
	service, _ := newRubricService(t)
	ctx := context.Background()

	templateA, err := service.CreateTemplate(ctx, dto.TemplateCreateRequest{Name: "Rubric A"})
	require.NoError(t, err)
	templateB, err := service.CreateTemplate(ctx, dto.TemplateCreateRequest{Name: "Rubric B"})
	require.NoError(t, err)

	_, err = service.CreateCriterion(ctx, templateA.ID.String(), dto.CriterionCreateRequest{Criterion: "Clarity"})
	require.NoError(t, err)
	_, err = service.CreateCriterion(ctx, templateB.ID.String(), dto.CriterionCreateRequest{Criterion: "Depth"})
	require.NoError(t, err)

	all, err := service.ListCriteria(ctx, "definitely-not-a-uuid")
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := service.ListCriteria(ctx, templateA.ID.String())
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "Clarity", scoped[0].Criterion)
}

func TestGetTemplateMalformedID(t *testing.T) {
	service, _ := newRubricService(t)

	_, err := service.GetTemplate(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidID)
}
