package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ExerciseRequest defines the expected JSON for creating or updating a custom exercise.
type ExerciseRequest struct {
	Name             string   `json:"name" binding:"required"`
	PrimaryMuscle    string   `json:"primaryMuscle" binding:"required"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Notes            *string  `json:"notes"`
	Aliases          []string `json:"aliases"`
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:             r.Name,
		PrimaryMuscle:    r.PrimaryMuscle,
		SecondaryMuscles: r.SecondaryMuscles,
		Notes:            r.Notes,
		Aliases:          r.Aliases,
	}
}

// SearchExercises godoc
// @Summary Search both catalogs by name
// @Tags Exercises
// @Produce json
// @Param q query string false "Name fragment"
// @Success 200 {array} ExerciseResponse
// @Router /exercises/search [get]
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	exercises, err := h.exerciseService.SearchExercises(c.Request.Context(), userIDFromContext(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetAllExercises godoc
// @Summary Every global exercise plus the caller's own
// @Tags Exercises
// @Produce json
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) GetAllExercises(c *gin.Context) {
	exercises, err := h.exerciseService.GetAllExercises(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// CreateUserExercise godoc
// @Summary Create a custom exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} IDResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateUserExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercise, err := h.exerciseService.CreateUserExercise(c.Request.Context(), userIDFromContext(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: exercise.ID})
}

// GET /exercises/user/:id
func (h *ExerciseHandler) GetUserExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetUserExercise(c.Request.Context(), userIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// PUT /exercises/user/:id
func (h *ExerciseHandler) UpdateUserExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercise, err := h.exerciseService.UpdateUserExercise(c.Request.Context(), userIDFromContext(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteUserExercise also strips the exercise from the caller's workouts.
// DELETE /exercises/user/:id
func (h *ExerciseHandler) DeleteUserExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteUserExercise(c.Request.Context(), userIDFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /exercises/user/:id/usage
func (h *ExerciseHandler) CheckExerciseUsage(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	usage, err := h.exerciseService.CheckExerciseUsage(c.Request.Context(), userIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}
