package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

type MailHandler struct {
	svc *services.Services
}

func NewMailHandler(svc *services.Services) *MailHandler {
	return &MailHandler{svc: svc}
}

func mailboxURL(folder models.Folder) string {
	return "/mail?folder=" + url.QueryEscape(string(folder))
}

// List shows one folder. A failed fetch degrades to an empty mailbox.
func (h *MailHandler) List(w http.ResponseWriter, r *http.Request) {
	folder := models.ParseFolder(r.URL.Query().Get("folder"))
	query := r.URL.Query().Get("q")
	emails, err := h.svc.Mail.List(r.Context(), folder, query)
	if err != nil {
		if httpx.WantsJSON(r) {
			fail(w, r, err)
			return
		}
		slog.Error("mail list", "folder", folder, "error", err)
		emails = nil
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, emails)
		return
	}

	var selected *models.Email
	if id := formIDQuery(r, "id"); id != nil {
		e, err := h.svc.Mail.Get(r.Context(), *id)
		switch {
		case err == nil:
			selected = e
		case !errors.Is(err, services.ErrNotFound):
			slog.Warn("open message", "id", *id, "error", err)
		}
		if selected != nil && !selected.Read {
			if err := h.svc.Mail.MarkRead(r.Context(), selected.ID); err != nil {
				slog.Warn("mark read", "id", selected.ID, "error", err)
			} else {
				selected.Read = true
				for i := range emails {
					if emails[i].ID == selected.ID {
						emails[i].Read = true
					}
				}
			}
		}
	}
	unread, err := h.svc.Mail.Unread(r.Context())
	if err != nil {
		slog.Warn("unread count", "error", err)
	}
	render(w, r, "mail/index.html", map[string]any{
		"Emails":   emails,
		"Folder":   folder,
		"Folders":  models.Folders,
		"Query":    query,
		"Selected": selected,
		"Unread":   unread,
		"Compose":  r.URL.Query().Get("compose") == "1",
	})
}

func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	in, err := bind(r, func(r *http.Request) services.SendInput {
		return services.SendInput{
			To:      formString(r, "to"),
			Subject: formString(r, "subject"),
			Body:    r.FormValue("body"),
		}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	res, err := h.svc.Mail.Send(r.Context(), in)
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			render(w, r, "mail/index.html", map[string]any{
				"Folder":  models.FolderInbox,
				"Folders": models.Folders,
				"Compose": true,
				"Draft":   in,
				"Errors":  fields,
			})
			return
		}
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, res)
		return
	}
	if !res.Success {
		render(w, r, "mail/index.html", map[string]any{
			"Folder":    models.FolderInbox,
			"Folders":   models.Folders,
			"Compose":   true,
			"Draft":     in,
			"SendError": res.Error,
		})
		return
	}
	done(w, r, http.StatusOK, res, mailboxURL(models.FolderSent), "mail_sent")
}

func (h *MailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Mail.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, localReferer(r, "/mail"), "deleted")
}

func (h *MailHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Mail.MarkRead(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, localReferer(r, "/mail"), "")
}

type starRequest struct {
	Starred bool `json:"starred"`
}

func (h *MailHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := bind(r, func(r *http.Request) starRequest {
		return starRequest{Starred: formBool(r, "starred")}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if err := h.svc.Mail.ToggleStar(r.Context(), id, in.Starred); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]any{"success": true, "starred": in.Starred}, localReferer(r, "/mail"), "")
}

func (h *MailHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Mail.Archive(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, localReferer(r, "/mail"), "saved")
}
