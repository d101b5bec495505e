package catalog

import "math/rand"

// Domain is one entry of the static interview-domain catalog.
type Domain struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CommonRoles []string `json:"commonRoles"`
	TechStack   []string `json:"techStack"`
}

var Domains = []Domain{
	{
		ID:          "frontend",
		Name:        "Frontend Development",
		CommonRoles: []string{"Frontend Developer", "UI Engineer", "Web Developer"},
		TechStack:   []string{"React", "TypeScript", "CSS", "Next.js"},
	},
	{
		ID:          "backend",
		Name:        "Backend Development",
		CommonRoles: []string{"Backend Developer", "API Engineer", "Platform Engineer"},
		TechStack:   []string{"Go", "PostgreSQL", "Redis", "gRPC"},
	},
	{
		ID:          "fullstack",
		Name:        "Full Stack Development",
		CommonRoles: []string{"Full Stack Developer", "Software Engineer"},
		TechStack:   []string{"React", "Node.js", "MongoDB", "Docker"},
	},
	{
		ID:          "mobile",
		Name:        "Mobile Development",
		CommonRoles: []string{"Mobile Developer", "iOS Engineer", "Android Engineer"},
		TechStack:   []string{"Swift", "Kotlin", "React Native", "Flutter"},
	},
	{
		ID:          "devops",
		Name:        "DevOps & Cloud",
		CommonRoles: []string{"DevOps Engineer", "Site Reliability Engineer", "Cloud Engineer"},
		TechStack:   []string{"Kubernetes", "Terraform", "AWS", "CI/CD"},
	},
	{
		ID:          "data",
		Name:        "Data Engineering",
		CommonRoles: []string{"Data Engineer", "Analytics Engineer", "ML Engineer"},
		TechStack:   []string{"Python", "Spark", "Airflow", "SQL"},
	},
	{
		ID:          "security",
		Name:        "Security Engineering",
		CommonRoles: []string{"Security Engineer", "AppSec Engineer"},
		TechStack:   []string{"OWASP", "Burp Suite", "Go", "Linux"},
	},
}

// DomainByID returns the catalog entry for id, or nil if unknown.
func DomainByID(id string) *Domain {
	for i := range Domains {
		if Domains[i].ID == id {
			return &Domains[i]
		}
	}
	return nil
}

var covers = []string{
	"/covers/adobe.png",
	"/covers/amazon.png",
	"/covers/facebook.png",
	"/covers/hostinger.png",
	"/covers/pinterest.png",
	"/covers/quora.png",
	"/covers/reddit.png",
	"/covers/skype.png",
	"/covers/spotify.png",
	"/covers/telegram.png",
	"/covers/tiktok.png",
	"/covers/yahoo.png",
}

// RandomCover picks a cover image for a newly created interview.
func RandomCover() string {
	return covers[rand.Intn(len(covers))]
}
