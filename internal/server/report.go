package server

import (
	"net/http"

	reportdomain "github.com/commonshq/samiti/internal/report/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ExportReport(c *gin.Context) {
	data, err := s.reportSvc.Export(c.Request.Context(), reportdomain.ExportRequest{
		EventID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="distributions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) ImportReport(c *gin.Context) {
	data, err := workbookBody(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reportSvc.Import(c.Request.Context(), reportdomain.ImportRequest{
		EventID: c.Param("id"),
		Data:    data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
