package handler

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"urbaneye/backend/internal/api/resp"
	"urbaneye/backend/internal/auth"
	"urbaneye/backend/internal/complaint"
	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/models"
	"urbaneye/backend/internal/photo"
	"urbaneye/backend/internal/storage"
)

// complaintView is the read representation: the stored photo bytes are
// replaced with a data URL, or null when absent or unconvertible.
type complaintView struct {
	models.Complaint
	Photo *string `json:"photo"`
}

func (h *Handler) view(c *models.Complaint) complaintView {
	v := complaintView{Complaint: *c}
	blob := photo.FromStored(c.Photo, c.PhotoMime)
	if blob == nil {
		return v
	}
	url, ok := blob.DataURL()
	if !ok {
		// Corrupt bytes post-storage: serve the rest of the record.
		h.Logger.Warn("photo conversion failed, nulling field", zap.String("complaint_id", c.ID))
		return v
	}
	v.Photo = &url
	return v
}

func (h *Handler) views(list []models.Complaint) []complaintView {
	out := make([]complaintView, 0, len(list))
	for i := range list {
		out = append(out, h.view(&list[i]))
	}
	return out
}

type coordinatesPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateComplaint handles the multipart submission:
// title, description, category, severity, location, division?,
// coordinates? (JSON string), tags? (JSON string), photo? (file, <=5MB image).
func (h *Handler) CreateComplaint(c *gin.Context) {
	actor := auth.CurrentActor(c)

	in := complaint.CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Severity:    c.PostForm("severity"),
		Location:    c.PostForm("location"),
		Division:    c.PostForm("division"),
	}

	if raw := c.PostForm("coordinates"); raw != "" {
		var coords coordinatesPayload
		if err := json.Unmarshal([]byte(raw), &coords); err == nil && (coords.Lat != 0 || coords.Lng != 0) {
			in.Longitude = &coords.Lng
			in.Latitude = &coords.Lat
		} else if err != nil {
			h.Logger.Warn("ignoring malformed coordinates", zap.Error(err))
		}
	}

	if raw := c.PostForm("tags"); raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			in.Tags = tags
		}
	}

	if fh, err := c.FormFile("photo"); err == nil {
		if fh.Size > config.MaxPhotoSize {
			resp.BadRequest(c, photo.ErrTooLarge.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, config.MaxPhotoSize+1))
		f.Close()
		if err != nil {
			h.fail(c, err)
			return
		}
		blob, err := photo.FromUpload(fh, data)
		if err != nil {
			resp.BadRequest(c, err.Error())
			return
		}
		in.Photo = blob
	}

	created, err := h.Complaints.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Created(c, gin.H{"complaint": h.view(created)})
}

// ListComplaints serves the filtered, paginated listing.
func (h *Handler) ListComplaints(c *gin.Context) {
	actor := auth.CurrentActor(c)

	filter := storage.ListFilter{
		Division:  c.Query("division"),
		UserID:    c.Query("userId"),
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Severity:  c.Query("severity"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if raw := c.Query("dateFrom"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateFrom = &t
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateTo = &t
		}
	}

	result, err := h.Complaints.List(actor, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{
		"complaints": h.views(result.Complaints),
		"pagination": result.Pagination,
	})
}

// GetComplaint serves one complaint by id.
func (h *Handler) GetComplaint(c *gin.Context) {
	found, err := h.Complaints.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{"complaint": h.view(found)})
}

type statusRequest struct {
	Status          string `json:"status" binding:"required"`
	AdminNotes      string `json:"adminNotes"`
	ResolutionNotes string `json:"resolutionNotes"`
	AssignedTo      string `json:"assignedTo"`
}

// UpdateStatus drives the state machine. Admin-only, division-gated.
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := auth.CurrentActor(c)

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	updated, err := h.Complaints.UpdateStatus(actor, c.Param("id"), complaint.StatusUpdate{
		Status:          req.Status,
		AdminNotes:      req.AdminNotes,
		ResolutionNotes: req.ResolutionNotes,
		AssignedTo:      req.AssignedTo,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{"complaint": h.view(updated)})
}

type updateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Severity    *string  `json:"severity"`
	Location    *string  `json:"location"`
	Tags        []string `json:"tags"`
}

// UpdateComplaint edits descriptive fields. Owner or division-gated admin.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	actor := auth.CurrentActor(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	updated, err := h.Complaints.Update(actor, c.Param("id"), complaint.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Severity:    req.Severity,
		Location:    req.Location,
		Tags:        req.Tags,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{"complaint": h.view(updated)})
}

// DeleteComplaint hard-deletes the record. Owner or division-gated admin.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	actor := auth.CurrentActor(c)
	if err := h.Complaints.Delete(actor, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{"message": "complaint deleted successfully"})
}

// StatsOverview serves the aggregate counts, division-scoped for admins.
func (h *Handler) StatsOverview(c *gin.Context) {
	actor := auth.CurrentActor(c)
	stats, err := h.Complaints.Stats(c.Request.Context(), actor, c.Query("division"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{
		"overview":   stats.Overview,
		"byCategory": stats.ByCategory,
		"bySeverity": stats.BySeverity,
		"recent":     h.views(stats.Recent),
	})
}
