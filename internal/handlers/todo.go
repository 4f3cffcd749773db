package handlers

import (
	"errors"
	"log"
	"net/http"

	"todoapp/internal/auth"
	"todoapp/internal/dto"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// List godoc
// @Summary      List the caller's todos, newest first
// @Tags         todos
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}   dto.TodoResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		serverError(c, "fetching todos", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodos(list))
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		serverError(c, "creating todo", err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), userID, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Ptr(),
	})
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		serverError(c, "creating todo", err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTodo(t))
}

// Update godoc
// @Summary      Partially update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string  true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Fields to change"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := todoID(c)
	if !ok {
		return
	}
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		serverError(c, "updating todo", err)
		return
	}

	in := service.UpdateInput{
		Completed: req.Completed,
		Priority:  req.Priority,
	}
	if req.Title.Present() {
		title := req.Title.Value()
		in.Title = &title
	}
	if req.Description.Present() {
		desc := req.Description.Value()
		in.Description = &desc
	}
	if req.DueDate.Present() {
		in.DueDateSet = true
		in.DueDate = req.DueDate.Ptr()
	}

	t, err := h.svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		default:
			serverError(c, "updating todo", err)
		}
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.DeleteTodoResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := todoID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		serverError(c, "deleting todo", err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteTodoResponse{Message: "Todo deleted successfully"})
}

// todoID reads the id path param. A malformed UUID can't match any row, so
// it is reported the same way as a missing one.
func todoID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if uuid.Validate(id) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return "", false
	}
	return id, true
}

// serverError logs the failure for the operator and answers with an opaque
// 500; parse errors and store errors are deliberately not distinguished.
func serverError(c *gin.Context, op string, err error) {
	log.Printf("Error %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
