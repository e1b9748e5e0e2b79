package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecohub-backend/log"
	"ecohub-backend/utils"
)

// UploadFile stores an image from the multipart field "file" and returns
// the generated name, which clients then send as imageFile or profile_image.
func (ctl *Controller) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxUploadSize+64<<10)
	header, err := c.FormFile("file")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "file is required (max 1MB)")
		return
	}

	name, err := utils.SaveImage(ctl.UploadDir, header)
	switch {
	case errors.Is(err, utils.ErrFileTooLarge), errors.Is(err, utils.ErrUnsupportedType):
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(c, err)
		return
	}

	log.InfoLog("file uploaded", "filename", name, "size", header.Size)
	c.JSON(http.StatusOK, gin.H{"filename": name})
}
