package api

import (
	"net/http"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// ListWorkouts answers anonymous callers with an empty list.
// GET /workouts
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GET /workouts/:id
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// GET /workouts/:id/detail
func (h *WorkoutHandler) GetWorkoutDetail(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	detail, err := h.workoutService.GetWorkoutDetail(c.Request.Context(), userIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, WorkoutDetailResponse{
		Workout: MapWorkoutToResponse(detail.Workout),
		Items:   detail.Items,
	})
}

// POST /workouts
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userIDFromContext(c), req.Draft())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: workout.ID})
}

// UpdateWorkout replaces date, notes and items.
// PUT /workouts/:id
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userIDFromContext(c), id, req.Draft())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DELETE /workouts/:id
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userIDFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /workouts/clone-latest
func (h *WorkoutHandler) CloneLatestWorkout(c *gin.Context) {
	workout, err := h.workoutService.CloneLatestWorkout(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: workout.ID})
}

// GET /workouts/:id/analytics
func (h *WorkoutHandler) GetWorkoutAnalytics(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	tallies, err := h.workoutService.GetWorkoutAnalytics(c.Request.Context(), userIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tallies)
}

// GetLastExercisePerformance answers null when nothing is found.
// GET /exercises/last-performance?kind=&id=&excludeWorkoutId=
func (h *WorkoutHandler) GetLastExercisePerformance(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Query("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid id format")
		return
	}
	ref := domain.ExerciseRef{Kind: domain.ExerciseKind(c.Query("kind")), ID: exerciseID}

	var exclude *primitive.ObjectID
	if raw := c.Query("excludeWorkoutId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid excludeWorkoutId format")
			return
		}
		exclude = &id
	}

	last, err := h.workoutService.GetLastExercisePerformance(c.Request.Context(), userIDFromContext(c), ref, exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	if last == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, LastPerformanceResponse{
		WorkoutID: last.WorkoutID,
		Date:      toMillis(last.Date),
		Reps:      last.Reps,
		Weight:    last.Weight,
	})
}
