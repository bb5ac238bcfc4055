package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	MaterialService *service.MaterialService
}

func NewMaterialController(materialService *service.MaterialService) *MaterialController {
	return &MaterialController{MaterialService: materialService}
}

// CreateMaterial godoc
// @Summary Create a learning material
// @Description Multipart form. A file is required unless type is link, which needs link_url. Videos are probed for duration.
// @Tags Materials
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   class_id formData int true "Class ID"
// @Param   title formData string true "Title"
// @Param   description formData string false "Description"
// @Param   type formData string false "document, video, link or image"
// @Param   link_url formData string false "External URL for link materials"
// @Param   file formData file false "Material file"
// @Success 201 {object} util.Response{data=model.Material} "Created"
// @Failure 400 {object} util.Response "Invalid input or file"
// @Failure 403 {object} util.Response "Not the class owner"
// @Router /api/materials [post]
func (c *MaterialController) CreateMaterial(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateMaterialInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	fh, err := optionalFile(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	material, err := c.MaterialService.Create(ctx.Request.Context(), claims, req, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, material)
}

// ListMaterials godoc
// @Summary List materials
// @Tags Materials
// @Produce  json
// @Security ApiKeyAuth
// @Param   class_id query int false "Class ID"
// @Param   type query string false "Material type"
// @Success 200 {object} util.Response{data=[]model.Material} "Success"
// @Failure 403 {object} util.Response "Class not accessible"
// @Router /api/materials [get]
func (c *MaterialController) ListMaterials(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	materials, err := c.MaterialService.List(claims, util.MustParseUint(ctx.Query("class_id")), ctx.Query("type"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// GetMaterial godoc
// @Summary Get a material
// @Tags Materials
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Material ID"
// @Success 200 {object} util.Response{data=model.Material} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Material not found"
// @Router /api/materials/{id} [get]
func (c *MaterialController) GetMaterial(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	material, err := c.MaterialService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, material)
}

// UpdateMaterial godoc
// @Summary Update a material
// @Tags Materials
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Material ID"
// @Param   title formData string false "Title"
// @Param   description formData string false "Description"
// @Param   link_url formData string false "External URL"
// @Param   file formData file false "Replacement file"
// @Success 200 {object} util.Response{data=model.Material} "Updated"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Material not found"
// @Router /api/materials/{id} [put]
func (c *MaterialController) UpdateMaterial(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateMaterialInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	fh, err := optionalFile(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	material, err := c.MaterialService.Update(ctx.Request.Context(), id, claims, req, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "material updated", material)
}

// DeleteMaterial godoc
// @Summary Delete a material
// @Tags Materials
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Material ID"
// @Success 200 {object} util.Response "Deleted"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Material not found"
// @Router /api/materials/{id} [delete]
func (c *MaterialController) DeleteMaterial(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.MaterialService.Delete(id, claims); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "material deleted", nil)
}

// DownloadMaterial godoc
// @Summary Download a material file
// @Tags Materials
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path int true "Material ID"
// @Success 200 {file} file "Material file"
// @Failure 404 {object} util.Response "No file attached"
// @Router /api/materials/{id}/download [get]
func (c *MaterialController) DownloadMaterial(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := c.MaterialService.OpenFile(ctx.Request.Context(), id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendFile(ctx, file)
}
