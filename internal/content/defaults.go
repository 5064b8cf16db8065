package content

// DefaultAbout is the hard-coded content written on first load when no about
// document exists yet, and the source for per-field backfill in Migrate.
func DefaultAbout() About {
	return About{
		SchemaVersion: AboutSchemaVersion,
		Profile: &Profile{
			Avatar: "👨‍💻",
			Name:   "올레길",
			Role:   "iOS Engineer & Digital Gardener",
			Bio: "iOS 개발과 웹 기술에 관심이 많은 엔지니어입니다.\n" +
				"사용자에게 가치를 전달하는 제품을 만드는 것을 좋아하며,\n" +
				"배운 것을 기록하고 공유하는 것을 즐깁니다.",
		},
		Skills: []SkillGroup{
			{
				Title: "iOS Development",
				Items: []string{"Swift", "SwiftUI", "UIKit", "Combine", "TCA", "Core Data", "Firebase", "StoreKit"},
			},
			{
				Title: "Web Development",
				Items: []string{"HTML/CSS", "JavaScript", "TypeScript", "React", "Next.js", "Tailwind CSS"},
			},
			{
				Title: "DevOps & Tools",
				Items: []string{"Git", "GitHub Actions", "Vercel", "Supabase", "Xcode", "VS Code"},
			},
		},
		Experiences: []Experience{
			{
				Date:        "2023 - 현재",
				Title:       "iOS 개발자",
				Description: "SwiftUI를 활용한 모던 iOS 앱 개발에 집중하고 있습니다. 사용자 경험 개선과 코드 품질 향상을 위해 꾸준히 학습하고 있습니다.",
			},
			{
				Date:        "2022 - 2023",
				Title:       "사이드 프로젝트 런칭",
				Description: "개인 앱 서비스를 기획, 개발, 운영하며 수익화 경험을 쌓았습니다. AdMob을 통한 광고 수익화와 사용자 피드백 기반 개선 작업을 진행했습니다.",
			},
			{
				Date:        "2021",
				Title:       "iOS 개발 시작",
				Description: "Swift와 iOS 개발에 입문했습니다. UIKit부터 시작해 점차 SwiftUI와 모던 아키텍처를 학습하며 성장해왔습니다.",
			},
		},
		Interests: []Interest{
			{
				Icon:        "🏝️",
				Title:       "제주 올레길",
				Description: "주말마다 올레길 코스를 하나씩 걷고 있습니다. 완주가 목표입니다.",
			},
			{
				Icon:        "📱",
				Title:       "사이드 프로젝트",
				Description: "작은 아이디어를 앱으로 만들어 보는 것을 좋아합니다.",
			},
			{
				Icon:        "✍️",
				Title:       "기록",
				Description: "배운 것과 경험한 것을 글로 정리해 남깁니다.",
			},
		},
		Contacts: []Contact{
			{
				Icon:  "📧",
				Label: "Email",
				Value: "jejuolleapps@gmail.com",
				URL:   "mailto:jejuolleapps@gmail.com",
			},
			{
				Icon:  "💻",
				Label: "GitHub",
				Value: "@ollekil",
				URL:   "https://github.com/ollekil",
			},
		},
		SiteInfo: &SiteInfo{
			Title: "이 블로그는",
			Paragraphs: []string{
				"iOS 개발과 제주 생활을 기록하는 공간입니다.",
				"배운 것을 정리하고, 만든 것을 공유하고, 걸은 길을 남깁니다.",
			},
		},
	}
}
