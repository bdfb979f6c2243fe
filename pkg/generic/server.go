package generic

import (
	"fmt"
	"github.com/gin-gonic/gin"
)

type Server struct {
	Router *gin.Engine
	Port   string
}

func (s *Server) Addr() string {
	return fmt.Sprintf(":%s", s.Port)
}
