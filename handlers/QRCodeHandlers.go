package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"fabtrack/models"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"gorm.io/gorm"
)

// addLabel adds text to an image at the specified position
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold adds bold label text
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// GeneratePartQRCode godoc
// @Summary      Generate a labeled QR code for an assembly part
// @Description  Returns a JPEG with the QR payload (part ID and designation)
// @Description  on top and human-readable part details below, for shop-floor
// @Description  tagging.
// @Tags         qr
// @Produce      jpeg
// @Param        id   path      int  true  "Assembly part ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/parts/{id}/qr [get]
func GeneratePartQRCode(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid part ID"})
			return
		}

		var part models.AssemblyPart
		err = gdb.WithContext(c.Request.Context()).
			Preload("Project").
			Preload("Building").
			First(&part, uint(id)).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Assembly part not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch part"})
			return
		}

		qrData := struct {
			ID              uint   `json:"id"`
			PartDesignation string `json:"part_designation"`
		}{
			ID:              part.ID,
			PartDesignation: part.PartDesignation,
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to marshal part data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 5*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		projectNumber := "N/A"
		if part.Project != nil {
			projectNumber = part.Project.ProjectNumber
		}
		buildingName := "N/A"
		if part.Building != nil {
			buildingName = part.Building.Designation
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "Part:")
		addLabel(combinedImg, xPos+120, startY, part.PartDesignation)
		addLabelBold(combinedImg, xPos, startY+lineHeight, "Project:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, projectNumber)
		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Building:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, buildingName)
		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Quantity:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, strconv.Itoa(part.Quantity))
		addLabelBold(combinedImg, xPos, startY+4*lineHeight, "Status:")
		addLabel(combinedImg, xPos+120, startY+4*lineHeight, part.Status)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, &jpeg.Options{Quality: 90}); err != nil {
			c.String(http.StatusInternalServerError, "Failed to encode image")
			return
		}

		c.Header("Content-Disposition", "inline; filename=\"part_"+part.PartDesignation+".jpg\"")
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
