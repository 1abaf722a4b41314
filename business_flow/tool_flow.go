package businessflow

import (
	"context"
	"io"
	"strings"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"gorm.io/gorm"
)

// ToolFlow covers the public catalog and its admin maintenance
type ToolFlow interface {
	List(ctx context.Context, req *dto.ListToolsQuery) (*dto.ToolListResponse, error)
	Get(ctx context.Context, id uint) (*dto.ToolDTO, error)

	AdminList(ctx context.Context, req *dto.ListToolsQuery) (*dto.ToolListResponse, error)
	AdminGet(ctx context.Context, id uint) (*dto.ToolDTO, error)
	Create(ctx context.Context, req *dto.AdminToolRequest) (*dto.ToolDTO, error)
	Update(ctx context.Context, id uint, req *dto.AdminToolRequest) (*dto.ToolDTO, error)
	Delete(ctx context.Context, id uint) error

	Import(ctx context.Context, r io.Reader) (*dto.ToolImportResult, error)
	Upsert(ctx context.Context, rows []ToolImportRow) (*dto.ToolImportResult, error)
}

// ToolFlowImpl implements ToolFlow
type ToolFlowImpl struct {
	toolRepo repository.ToolRepository
	db       *gorm.DB
}

func NewToolFlow(toolRepo repository.ToolRepository, db *gorm.DB) ToolFlow {
	return &ToolFlowImpl{toolRepo: toolRepo, db: db}
}

func toolNameExistsError(err error) *BusinessError {
	return NewConflictError("TOOL_NAME_EXISTS", "A tool with this name already exists", err)
}

func toolNotFoundError() *BusinessError {
	return NewNotFoundError("TOOL_NOT_FOUND", "Tool not found", ErrToolNotFound)
}

// List returns one page of active tools ordered by name, plus the category and type facets.
// hasMore is offset+limit < total.
func (f *ToolFlowImpl) List(ctx context.Context, req *dto.ListToolsQuery) (*dto.ToolListResponse, error) {
	if req == nil {
		req = &dto.ListToolsQuery{}
	}
	filter := toolFilterFrom(req)
	filter.IsActive = utils.ToPtr(true)
	return f.list(ctx, filter, req, utils.DefaultToolsLimit, utils.MaxToolsLimit, true)
}

// AdminList is List without the active-only restriction; isActive narrows it when given
func (f *ToolFlowImpl) AdminList(ctx context.Context, req *dto.ListToolsQuery) (*dto.ToolListResponse, error) {
	if req == nil {
		req = &dto.ListToolsQuery{}
	}
	filter := toolFilterFrom(req)
	filter.IsActive = req.IsActive
	return f.list(ctx, filter, req, utils.DefaultAdminListLimit, utils.MaxAdminListLimit, false)
}

func (f *ToolFlowImpl) list(ctx context.Context, filter models.ToolFilter, req *dto.ListToolsQuery, defLimit, maxLimit int, activeOnly bool) (*dto.ToolListResponse, error) {
	limit := utils.ClampLimit(req.Limit, defLimit, maxLimit)
	offset := max(req.Offset, 0)

	total, err := f.toolRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.toolRepo.ByFilter(ctx, filter, "tools.name ASC, tools.id ASC", limit, offset)
	if err != nil {
		return nil, err
	}
	categories, err := f.toolRepo.DistinctCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	types, err := f.toolRepo.DistinctTypes(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	if types == nil {
		types = []string{}
	}

	return &dto.ToolListResponse{
		Success:    true,
		Tools:      ToToolDTOs(rows),
		Total:      total,
		Categories: categories,
		Types:      types,
		Pagination: dto.NewPagination(limit, offset, total),
	}, nil
}

func toolFilterFrom(req *dto.ListToolsQuery) models.ToolFilter {
	filter := models.ToolFilter{}
	if c := strings.TrimSpace(req.Category); c != "" {
		filter.Category = &c
	}
	if t := strings.TrimSpace(req.Type); t != "" {
		filter.Type = &t
	}
	if s := strings.TrimSpace(req.Search); s != "" {
		filter.Search = &s
	}
	return filter
}

// Get returns an active tool; inactive tools are invisible to the public
func (f *ToolFlowImpl) Get(ctx context.Context, id uint) (*dto.ToolDTO, error) {
	tool, err := f.toolRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool == nil || !utils.IsTrue(tool.IsActive) {
		return nil, toolNotFoundError()
	}
	out := ToToolDTO(*tool)
	return &out, nil
}

func (f *ToolFlowImpl) AdminGet(ctx context.Context, id uint) (*dto.ToolDTO, error) {
	tool, err := f.toolRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, toolNotFoundError()
	}
	out := ToToolDTO(*tool)
	return &out, nil
}

// toolInput is a validated create/update payload
type toolInput struct {
	name        string
	category    string
	description string
	license     string
	url         string
	pricing     *string
	isActive    bool
	tags        []string
}

func validateToolRequest(req *dto.AdminToolRequest) (*toolInput, error) {
	if req == nil {
		return nil, NewValidationError("TOOL_FIELDS_REQUIRED", "Name, description and category are required", ErrToolFieldsRequired)
	}
	in := &toolInput{
		name:        strings.TrimSpace(req.Name),
		category:    strings.TrimSpace(req.Category),
		description: strings.TrimSpace(req.Description),
		license:     strings.TrimSpace(req.License),
		url:         strings.TrimSpace(req.URL),
		pricing:     utils.TrimmedPtr(req.Pricing),
		isActive:    req.IsActive == nil || *req.IsActive,
		tags:        NormalizeTags(req.Type),
	}
	if in.name == "" || in.category == "" || in.description == "" {
		return nil, NewValidationError("TOOL_FIELDS_REQUIRED", "Name, description and category are required", ErrToolFieldsRequired)
	}
	return in, nil
}

// NormalizeTags trims tag names and drops blanks and case-insensitive repeats, keeping first-seen order
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

func buildTags(names []string) []models.ToolTag {
	tags := make([]models.ToolTag, 0, len(names))
	for i, n := range names {
		tags = append(tags, models.ToolTag{Name: n, Position: i})
	}
	return tags
}

// Create inserts a tool. Names are unique: a taken name is a conflict.
func (f *ToolFlowImpl) Create(ctx context.Context, req *dto.AdminToolRequest) (*dto.ToolDTO, error) {
	in, err := validateToolRequest(req)
	if err != nil {
		return nil, err
	}

	var tool *models.Tool
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.toolRepo.ByName(txCtx, in.name)
		if err != nil {
			return err
		}
		if existing != nil {
			return toolNameExistsError(ErrToolNameExists)
		}
		tool, err = f.insert(txCtx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := ToToolDTO(*tool)
	return &out, nil
}

func (f *ToolFlowImpl) insert(ctx context.Context, in *toolInput) (*models.Tool, error) {
	now := utils.UTCNow()
	tool := &models.Tool{
		Name:        in.name,
		Category:    in.category,
		License:     in.license,
		Description: in.description,
		URL:         in.url,
		Pricing:     in.pricing,
		IsActive:    utils.ToPtr(in.isActive),
		Tags:        buildTags(in.tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.toolRepo.Save(ctx, tool); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, toolNameExistsError(err)
		}
		return nil, err
	}
	return tool, nil
}

// Update replaces every field of a tool, tags included. Renaming into another tool's name is a conflict.
func (f *ToolFlowImpl) Update(ctx context.Context, id uint, req *dto.AdminToolRequest) (*dto.ToolDTO, error) {
	in, err := validateToolRequest(req)
	if err != nil {
		return nil, err
	}

	var updated *models.Tool
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		tool, err := f.toolRepo.ByID(txCtx, id)
		if err != nil {
			return err
		}
		if tool == nil {
			return toolNotFoundError()
		}
		if tool.Name != in.name {
			other, err := f.toolRepo.ByName(txCtx, in.name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != tool.ID {
				return toolNameExistsError(ErrToolNameExists)
			}
		}
		updated, err = f.overwrite(txCtx, tool, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := ToToolDTO(*updated)
	return &out, nil
}

func (f *ToolFlowImpl) overwrite(ctx context.Context, tool *models.Tool, in *toolInput) (*models.Tool, error) {
	tool.Name = in.name
	tool.Category = in.category
	tool.License = in.license
	tool.Description = in.description
	tool.URL = in.url
	tool.Pricing = in.pricing
	tool.IsActive = utils.ToPtr(in.isActive)
	tool.UpdatedAt = utils.UTCNow()

	if err := f.toolRepo.Update(ctx, tool); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, toolNameExistsError(err)
		}
		return nil, err
	}
	if err := f.toolRepo.ReplaceTags(ctx, tool.ID, in.tags); err != nil {
		return nil, err
	}
	return f.toolRepo.ByID(ctx, tool.ID)
}

// Delete removes a tool and its tags for good
func (f *ToolFlowImpl) Delete(ctx context.Context, id uint) error {
	n, err := f.toolRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return toolNotFoundError()
	}
	return nil
}

// Import parses a TSV catalog and upserts every valid row by name. Rejected rows are reported, not fatal.
func (f *ToolFlowImpl) Import(ctx context.Context, r io.Reader) (*dto.ToolImportResult, error) {
	rows, rowErrors, err := ParseToolsTSV(r)
	if err != nil {
		return nil, NewValidationError("IMPORT_FILE_INVALID", err.Error(), ErrImportFileInvalid)
	}
	result, err := f.Upsert(ctx, rows)
	if err != nil {
		return nil, err
	}
	result.Skipped += len(rowErrors)
	result.Errors = append(result.Errors, rowErrors...)
	return result, nil
}

// Upsert writes rows in one transaction, creating unknown names and overwriting known ones
func (f *ToolFlowImpl) Upsert(ctx context.Context, rows []ToolImportRow) (*dto.ToolImportResult, error) {
	result := &dto.ToolImportResult{}
	if len(rows) == 0 {
		return result, nil
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		for _, row := range rows {
			in := row.input()
			existing, err := f.toolRepo.ByName(txCtx, in.name)
			if err != nil {
				return err
			}
			if existing == nil {
				if _, err := f.insert(txCtx, in); err != nil {
					return err
				}
				result.Created++
				continue
			}
			if _, err := f.overwrite(txCtx, existing, in); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
