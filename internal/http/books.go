package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/entities"
)

// BooksController exposes the reading list over JSON.
type BooksController struct {
	catalogue *catalogue.Service
}

func NewBooksController(svc *catalogue.Service) *BooksController {
	return &BooksController{catalogue: svc}
}

// BookResponse is the API representation of a book.
type BookResponse struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	DisplayAuthor string          `json:"display_author"`
	Status        entities.Status `json:"status"`
	NextStatus    entities.Status `json:"next_status"`
	CreatedAt     int64           `json:"created_at"`
}

// BookListResponse is returned by GET /api/books.
type BookListResponse struct {
	Books       []BookResponse `json:"books"`
	Count       int            `json:"count"`
	Loading     bool           `json:"loading"`
	ImportError string         `json:"import_error"`
}

// BookRequest is the body accepted by POST and PUT /api/books.
type BookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
}

func toBookResponse(b entities.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		DisplayAuthor: b.DisplayAuthor(),
		Status:        b.Status,
		NextStatus:    b.Status.Next(),
		CreatedAt:     b.CreatedAt,
	}
}

func toBookResponses(books []entities.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

// List handles GET /api/books.
// Without filters it returns the current list; q and status narrow it via search.
func (bc *BooksController) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	statusParam := strings.TrimSpace(c.Query("status"))

	snapshot := bc.catalogue.Snapshot()
	books := snapshot.Books

	if query != "" || statusParam != "" {
		var status entities.Status
		if statusParam != "" {
			parsed, err := entities.ParseStatus(statusParam)
			if err != nil {
				respondBadRequest(c, err.Error())
				return
			}
			status = parsed
		}

		found, err := bc.catalogue.Search(c.Request.Context(), query, status)
		if err != nil {
			respondServiceError(c, err, "search books")
			return
		}
		books = found
	}

	c.JSON(http.StatusOK, BookListResponse{
		Books:       toBookResponses(books),
		Count:       len(books),
		Loading:     snapshot.Loading,
		ImportError: snapshot.ImportError,
	})
}

// Stats handles GET /api/books/stats.
func (bc *BooksController) Stats(c *gin.Context) {
	stats, err := bc.catalogue.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "book stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Add handles POST /api/books.
func (bc *BooksController) Add(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	id, err := bc.catalogue.Add(c.Request.Context(), req.Title, req.Author)
	if err != nil {
		respondServiceError(c, err, "add book")
		return
	}

	resp := gin.H{"id": id}
	if book, ok := bc.catalogue.Find(id); ok {
		resp["book"] = toBookResponse(book)
	}
	c.JSON(http.StatusCreated, resp)
}

// Edit handles PUT /api/books/:id.
// The status field is required; send the current one to keep it.
func (bc *BooksController) Edit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if _, found := bc.catalogue.Find(id); !found {
		respondNotFound(c, "book")
		return
	}

	err := bc.catalogue.Edit(c.Request.Context(), id, req.Title, req.Author, entities.Status(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		respondServiceError(c, err, "edit book")
		return
	}

	book, _ := bc.catalogue.Find(id)
	c.JSON(http.StatusOK, gin.H{"book": toBookResponse(book)})
}

// Remove handles DELETE /api/books/:id. Removing an absent book succeeds.
func (bc *BooksController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.catalogue.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "remove book")
		return
	}

	respondSuccess(c, "book removed", gin.H{"id": id})
}

// Advance handles POST /api/books/:id/advance.
func (bc *BooksController) Advance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, found := bc.catalogue.Find(id)
	if !found {
		respondNotFound(c, "book")
		return
	}

	status, err := bc.catalogue.AdvanceStatus(c.Request.Context(), book)
	if err != nil {
		respondServiceError(c, err, "advance status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}
