package server

import (
	"io"
	"net/http"
	"strings"

	memberdomain "github.com/commonshq/samiti/internal/member/domain"
	"github.com/gin-gonic/gin"
)

type memberRequest struct {
	FullName   string            `json:"full_name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email"`
	Attributes map[string]string `json:"attributes"`
}

func (s *Server) CreateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.Create(c.Request.Context(), memberdomain.CreateMemberRequest{
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Attributes: req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.Update(c.Request.Context(), memberdomain.UpdateMemberRequest{
		ID:         c.Param("id"),
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Attributes: req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMember(c *gin.Context) {
	resp, err := s.memberSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMembers(c *gin.Context) {
	resp, err := s.memberSvc.List(c.Request.Context(), memberdomain.ListFilter{
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMember(c *gin.Context) {
	if err := s.memberSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ExportMembers(c *gin.Context) {
	data, err := s.memberSvc.ExportExcel(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="members.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) ImportMembers(c *gin.Context) {
	data, err := workbookBody(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.ImportExcel(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createMemberFieldRequest struct {
	Name      string   `json:"name"`
	FieldType string   `json:"field_type"`
	Options   []string `json:"options"`
	Required  bool     `json:"required"`
	Position  int      `json:"position"`
}

func (s *Server) CreateMemberField(c *gin.Context) {
	var req createMemberFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.CreateFieldDef(c.Request.Context(), memberdomain.CreateFieldDefRequest{
		Name:      strings.TrimSpace(req.Name),
		FieldType: memberdomain.FieldType(strings.TrimSpace(req.FieldType)),
		Options:   req.Options,
		Required:  req.Required,
		Position:  req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMemberFields(c *gin.Context) {
	resp, err := s.memberSvc.ListFieldDefs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMemberField(c *gin.Context) {
	if err := s.memberSvc.DeleteFieldDef(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// workbookBody accepts either a multipart upload under the "file" field
// or a raw xlsx request body.
func workbookBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}
