package server

import (
	"net/http"
	"strconv"
	"strings"

	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	"github.com/gin-gonic/gin"
)

type createLevelRequest struct {
	LevelNumber int      `json:"level_number"`
	Name        string   `json:"name"`
	Values      []string `json:"values"`
}

func (s *Server) CreateLevel(c *gin.Context) {
	var req createLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.distSvc.CreateLevel(c.Request.Context(), distdomain.CreateLevelRequest{
		EventID:     c.Param("id"),
		LevelNumber: req.LevelNumber,
		Name:        strings.TrimSpace(req.Name),
		Values:      req.Values,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLevels(c *gin.Context) {
	resp, err := s.distSvc.ListLevels(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type segmentInput struct {
	LevelNumber int    `json:"level_number"`
	Value       string `json:"value"`
}

type assignBookRequest struct {
	EventID      string         `json:"event_id"`
	BookNumber   int            `json:"book_number"`
	Segments     []segmentInput `json:"segments"`
	MemberID     string         `json:"member_id"`
	ContactName  string         `json:"contact_name"`
	ContactPhone string         `json:"contact_phone"`
	IsExtraBook  bool           `json:"is_extra_book"`
}

func (s *Server) AssignBook(c *gin.Context) {
	var req assignBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	segments := make([]distdomain.SegmentInput, 0, len(req.Segments))
	for _, seg := range req.Segments {
		segments = append(segments, distdomain.SegmentInput{
			LevelNumber: seg.LevelNumber,
			Value:       seg.Value,
		})
	}

	resp, err := s.distSvc.Assign(c.Request.Context(), distdomain.AssignRequest{
		EventID:      req.EventID,
		BookNumber:   req.BookNumber,
		Segments:     segments,
		MemberID:     strings.TrimSpace(req.MemberID),
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		IsExtraBook:  req.IsExtraBook,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setReturnedRequest struct {
	Returned bool `json:"returned"`
}

func (s *Server) SetReturned(c *gin.Context) {
	var req setReturnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.distSvc.SetReturned(c.Request.Context(), distdomain.SetReturnedRequest{
		DistributionID: c.Param("id"),
		Returned:       req.Returned,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListDistributions filters by level values passed as level_1, level_2,
// level_3 query params.
func (s *Server) ListDistributions(c *gin.Context) {
	filter := distdomain.ListFilter{LevelValues: map[int]string{}}
	for level := 1; level <= distdomain.MaxLevels; level++ {
		if v := strings.TrimSpace(c.Query("level_" + strconv.Itoa(level))); v != "" {
			filter.LevelValues[level] = v
		}
	}

	resp, err := s.distSvc.ListByEvent(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
