package stubserver

import (
	"net/http"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/eshaffer321/agencia-go/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const userKey = "user"

// LoginRequest represents a login request
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Pacote is a travel package of the catalogue
type Pacote struct {
	ID      int64   `json:"id"`
	Titulo  string  `json:"titulo" binding:"required"`
	Destino string  `json:"destino"`
	Preco   float64 `json:"preco"`
	Imagem  string  `json:"imagem,omitempty"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Senha)) != nil {
		s.logger.Info().Str("email", req.Email).Msg("Login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"erro": "Invalid credentials"})
		return
	}

	c.SetCookie(SessionCookie, s.newSession(req.Email), 0, "/", "", false, true)
	c.JSON(http.StatusOK, acc.user)
}

// logout always answers 204, with or without a session
func (s *Server) logout(c *gin.Context) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.sessionUser(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet(userKey).(*types.User)
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"erro": "Access denied"})
			return
		}
		c.Next()
	}
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(userKey))
}

func (s *Server) listVendedores(c *gin.Context) {
	s.mu.Lock()
	users := make([]types.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	c.JSON(http.StatusOK, users)
}

func (s *Server) listPacotes(c *gin.Context) {
	s.mu.Lock()
	list := make([]Pacote, 0, len(s.pacotes))
	for _, p := range s.pacotes {
		list = append(list, *p)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPacote(c *gin.Context) {
	p, ok := s.findPacote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createPacote(c *gin.Context) {
	var p Pacote
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	s.mu.Lock()
	s.nextID++
	p.ID = s.nextID
	stored := p
	s.pacotes[p.ID] = &stored
	s.mu.Unlock()

	c.JSON(http.StatusOK, p)
}

func (s *Server) updatePacote(c *gin.Context) {
	current, ok := s.findPacote(c)
	if !ok {
		return
	}

	var dto Pacote
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	s.mu.Lock()
	existing, ok := s.pacotes[current.ID]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"erro": "pacote not found"})
		return
	}
	dto.ID = current.ID
	if dto.Imagem == "" {
		dto.Imagem = existing.Imagem
	}
	stored := dto
	s.pacotes[dto.ID] = &stored
	s.mu.Unlock()

	c.JSON(http.StatusOK, dto)
}

func (s *Server) deletePacote(c *gin.Context) {
	p, ok := s.findPacote(c)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.pacotes, p.ID)
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (s *Server) uploadImagem(c *gin.Context) {
	p, ok := s.findPacote(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "missing file"})
		return
	}

	s.mu.Lock()
	stored, ok := s.pacotes[p.ID]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"erro": "pacote not found"})
		return
	}
	stored.Imagem = "/uploads/" + strconv.FormatInt(p.ID, 10) + "-" + filepath.Base(file.Filename)
	result := *stored
	s.mu.Unlock()

	s.logger.Info().Int64("pacote", p.ID).Int64("size", file.Size).Msg("Image uploaded")
	c.JSON(http.StatusOK, result)
}

// findPacote resolves the :id parameter, answering 404 when unknown
func (s *Server) findPacote(c *gin.Context) (Pacote, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "invalid id"})
		return Pacote{}, false
	}

	s.mu.Lock()
	p, ok := s.pacotes[id]
	var out Pacote
	if ok {
		out = *p
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"erro": "pacote not found"})
		return Pacote{}, false
	}
	return out, true
}
