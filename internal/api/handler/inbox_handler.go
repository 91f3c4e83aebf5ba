package handler

import (
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/pkg/response"
)

// inboxRequest 请求体；id 和时间戳可以带但会被服务忽略
type inboxRequest struct {
	ID         int64      `json:"id"`
	Item       string     `json:"item" binding:"notblank"`
	CreateTime *time.Time `json:"createTime"`
	ModifyTime *time.Time `json:"modifyTime"`
}

func (r inboxRequest) toModel() model.Inbox {
	return model.Inbox{ID: r.ID, Item: r.Item, CreateTime: r.CreateTime, ModifyTime: r.ModifyTime}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// ListInbox 查询全部条目
// @Summary 查询收集箱
// @Tags 收集箱
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Inbox}
// @Failure 500 {object} response.Response
// @Router /api/v1/inbox [get]
func (h *Handler) ListInbox(c *gin.Context) {
	list, err := h.inboxService.GetAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

// GetInbox 按 ID 查询
// @Summary 查询单个条目
// @Tags 收集箱
// @Produce json
// @Param id path int true "条目ID"
// @Success 200 {object} response.Response{data=model.Inbox}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/inbox/{id} [get]
func (h *Handler) GetInbox(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inbox, found := h.inboxService.GetByID(c.Request.Context(), id).Get()
	if !found {
		response.NotFound(c, "inbox not found")
		return
	}
	response.Success(c, inbox)
}

// CreateInbox 新建条目
// @Summary 新建条目
// @Description 只使用 item，ID 与时间戳由服务端生成
// @Tags 收集箱
// @Accept json
// @Produce json
// @Param request body inboxRequest true "条目"
// @Success 201 {object} response.Response{data=model.Inbox}
// @Header 201 {string} Location "新条目地址"
// @Failure 400 {object} response.Response
// @Router /api/v1/inbox [post]
func (h *Handler) CreateInbox(c *gin.Context) {
	var req inboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	inbox, ok := h.inboxService.Create(c.Request.Context(), req.toModel()).Get()
	if !ok {
		response.BadRequest(c, "invalid inbox")
		return
	}
	location := path.Join(c.Request.URL.Path, strconv.FormatInt(inbox.ID, 10))
	response.Created(c, location, inbox)
}

// UpdateInbox 修改条目文本
// @Summary 修改条目
// @Description 以路径中的 ID 为准；条目不存在与参数不合法都返回 400
// @Tags 收集箱
// @Accept json
// @Produce json
// @Param id path int true "条目ID"
// @Param request body inboxRequest true "条目"
// @Success 200 {object} response.Response{data=model.Inbox}
// @Failure 400 {object} response.Response
// @Router /api/v1/inbox/{id} [put]
func (h *Handler) UpdateInbox(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req inboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	candidate := req.toModel()
	candidate.ID = id
	inbox, ok := h.inboxService.Update(c.Request.Context(), candidate).Get()
	if !ok {
		response.BadRequest(c, "invalid inbox or inbox not found")
		return
	}
	response.Success(c, inbox)
}

// DeleteInbox 删除条目
// @Summary 删除条目
// @Tags 收集箱
// @Param id path int true "条目ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/inbox/{id} [delete]
func (h *Handler) DeleteInbox(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !h.inboxService.Delete(c.Request.Context(), id) {
		response.NotFound(c, "inbox not found")
		return
	}
	response.NoContent(c)
}
