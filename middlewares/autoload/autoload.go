package autoload

// Import all middleware subpackages for side-effect registration.
import (
	_ "github.com/julienfritschheydon/doodates/middlewares/pollintent"
)
