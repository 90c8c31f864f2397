package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func handleCalendar(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	now := time.Now()
	year := queryInt(c, "year")
	if year == 0 {
		year = now.Year()
	}
	month := time.Month(queryInt(c, "month"))
	if month < time.January || month > time.December {
		month = now.Month()
	}

	events, err := database.GetEventsForMonth(db, userID, year, month)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "calendar.html", gin.H{
			"Title": "Calendrier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger le calendrier",
		})
		return
	}

	outfits, err := database.GetOutfits(db, userID)
	if err != nil {
		outfits = nil
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "calendar.html", gin.H{
			"Title": "Calendrier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	// Group events by day for the month grid
	eventsByDay := make(map[int][]models.CalendarEvent)
	for _, e := range events {
		day := e.Date.Day()
		eventsByDay[day] = append(eventsByDay[day], e)
	}

	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	c.HTML(http.StatusOK, "calendar.html", gin.H{
		"Title":       "Calendrier - Ma Garde-Robe",
		"User":        user,
		"CSRFToken":   csrfToken.Token,
		"Year":        year,
		"Month":       int(month),
		"DaysInMonth": time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(),
		"Events":      events,
		"EventsByDay": eventsByDay,
		"Outfits":     outfits,
		"PrevYear":    prev.Year(),
		"PrevMonth":   int(prev.Month()),
		"NextYear":    next.Year(),
		"NextMonth":   int(next.Month()),
	})
}

// eventFromForm parses the shared event form. The error string is user-facing
// and empty when the form is valid.
func eventFromForm(c *gin.Context) (models.CalendarEvent, string) {
	event := models.CalendarEvent{
		Title:     c.PostForm("title"),
		EventType: c.DefaultPostForm("event_type", models.EventOther),
		StartTime: c.PostForm("start_time"),
		EndTime:   c.PostForm("end_time"),
		AllDay:    formBool(c, "all_day"),
		OutfitID:  formIntPtr(c, "outfit_id"),
		Location:  c.PostForm("location"),
		Reminder:  formBool(c, "reminder"),
	}
	if minutes := formInt(c, "reminder_minutes"); minutes > 0 {
		event.ReminderMinutes = minutes
	}

	if event.Title == "" {
		return event, "Le titre est requis"
	}

	date, err := time.Parse("2006-01-02", c.PostForm("date"))
	if err != nil {
		return event, "La date est invalide"
	}
	event.Date = date

	return event, ""
}

func handleCreateEvent(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	event, formErr := eventFromForm(c)
	if formErr != "" {
		c.HTML(http.StatusBadRequest, "calendar.html", gin.H{
			"Title": "Calendrier - Ma Garde-Robe",
			"User":  user,
			"Error": formErr,
		})
		return
	}

	created, err := database.CreateEvent(db, userID, event)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "calendar.html", gin.H{
			"Title": "Calendrier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de créer l'événement",
		})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/calendar?year=%d&month=%d", created.Date.Year(), int(created.Date.Month())))
}

func handleEditEventPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	event, err := database.GetEvent(db, userID, eventID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	outfits, err := database.GetOutfits(db, userID)
	if err != nil {
		outfits = nil
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "event_form.html", gin.H{
			"Title": "Modifier l'événement - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "event_form.html", gin.H{
		"Title":     "Modifier " + event.Title + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Event":     event,
		"Outfits":   outfits,
	})
}

func handleUpdateEvent(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	event, formErr := eventFromForm(c)
	if formErr != "" {
		c.HTML(http.StatusBadRequest, "event_form.html", gin.H{
			"Title": "Modifier l'événement - Ma Garde-Robe",
			"User":  user,
			"Error": formErr,
			"Event": event,
		})
		return
	}

	if err := database.UpdateEvent(db, userID, eventID, event); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/calendar?year=%d&month=%d", event.Date.Year(), int(event.Date.Month())))
}

func handleDeleteEvent(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.DeleteEvent(db, userID, eventID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/calendar")
}
