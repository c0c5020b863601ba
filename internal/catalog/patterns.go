// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package catalog

// servicePatterns is the maintained provider list. It is intentionally a
// curated table, not a learned classifier; additions belong in the category
// block they serve.
var servicePatterns = []ServicePattern{
	// --- email ---
	{
		Name:        "Google Workspace",
		Category:    CategoryEmail,
		MXPatterns:  []string{"aspmx.l.google.com", "googlemail.com", "smtp.google.com"},
		SPFPatterns: []string{"include:_spf.google.com"},
		TXTPatterns: []string{"google-site-verification="},
		Description: "Google email and collaboration suite",
	},
	{
		Name:        "Microsoft 365",
		Category:    CategoryEmail,
		MXPatterns:  []string{"mail.protection.outlook.com", ".olc.protection.outlook.com"},
		SPFPatterns: []string{"include:spf.protection.outlook.com"},
		CNAMEPatterns: []string{
			"autodiscover.outlook.com", "enterpriseregistration.windows.net",
			"enterpriseenrollment.manage.microsoft.com",
		},
		TXTPatterns: []string{"ms=ms"},
		Description: "Microsoft email and productivity suite",
	},
	{
		Name:        "Proofpoint",
		Category:    CategoryEmail,
		MXPatterns:  []string{"pphosted.com", "ppe-hosted.com"},
		SPFPatterns: []string{"include:spf.pphosted.com", "include:spf-00"},
		Description: "Email security gateway",
	},
	{
		Name:        "Mimecast",
		Category:    CategoryEmail,
		MXPatterns:  []string{"mimecast.com", "mimecast.co.za"},
		SPFPatterns: []string{"include:spf.mimecast.com", "include:_netblocks.mimecast.com"},
		Description: "Email security and archiving",
	},
	{
		Name:        "SendGrid",
		Category:    CategoryEmail,
		SPFPatterns: []string{"include:sendgrid.net"},
		CNAMEPatterns: []string{"sendgrid.net"},
		Description: "Transactional email delivery",
	},
	{
		Name:        "Mailgun",
		Category:    CategoryEmail,
		MXPatterns:  []string{"mxa.mailgun.org", "mxb.mailgun.org"},
		SPFPatterns: []string{"include:mailgun.org"},
		CNAMEPatterns: []string{"mailgun.org"},
		Description: "Developer email API",
	},
	{
		Name:        "Amazon SES",
		Category:    CategoryEmail,
		MXPatterns:  []string{"amazonses.com", "inbound-smtp."},
		SPFPatterns: []string{"include:amazonses.com"},
		CNAMEPatterns: []string{"dkim.amazonses.com"},
		Description: "AWS transactional email service",
	},
	{
		Name:        "Postmark",
		Category:    CategoryEmail,
		SPFPatterns: []string{"include:spf.mtasv.net"},
		CNAMEPatterns: []string{"pm.mtasv.net"},
		Description: "Transactional email delivery",
	},
	{
		Name:        "Zoho Mail",
		Category:    CategoryEmail,
		MXPatterns:  []string{"zoho.com", "zohomail.com", "zoho.eu"},
		SPFPatterns: []string{"include:zoho.com", "include:zohomail.com"},
		TXTPatterns: []string{"zoho-verification="},
		Description: "Zoho hosted email",
	},
	{
		Name:        "Fastmail",
		Category:    CategoryEmail,
		MXPatterns:  []string{"messagingengine.com", "fastmail.com"},
		SPFPatterns: []string{"include:spf.messagingengine.com"},
		Description: "Hosted email provider",
	},
	{
		Name:        "ProtonMail",
		Category:    CategoryEmail,
		MXPatterns:  []string{"protonmail.ch"},
		SPFPatterns: []string{"include:_spf.protonmail.ch"},
		TXTPatterns: []string{"protonmail-verification="},
		Description: "Encrypted email provider",
	},

	// --- cloud ---
	{
		Name:     "Amazon AWS",
		Category: CategoryCloud,
		CNAMEPatterns: []string{
			"amazonaws.com", "cloudfront.net", "elasticbeanstalk.com",
			"awsglobalaccelerator.com", "elb.amazonaws.com",
		},
		NSPatterns:  []string{"awsdns"},
		Description: "Amazon Web Services cloud platform",
	},
	{
		Name:     "Microsoft Azure",
		Category: CategoryCloud,
		CNAMEPatterns: []string{
			"azurewebsites.net", "cloudapp.azure.com", "azureedge.net",
			"azurefd.net", "trafficmanager.net", "azure-api.net",
		},
		NSPatterns:  []string{"azure-dns"},
		Description: "Microsoft cloud platform",
	},
	{
		Name:     "Google Cloud",
		Category: CategoryCloud,
		CNAMEPatterns: []string{"googlehosted.com", "appspot.com", "run.app", "web.app"},
		NSPatterns:  []string{"googledomains.com", "ns-cloud"},
		Description: "Google cloud platform",
	},
	{
		Name:        "Cloudflare",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"cdn.cloudflare.net", "pages.dev", "workers.dev"},
		NSPatterns:  []string{"ns.cloudflare.com"},
		TXTPatterns: []string{"cloudflare-verify="},
		Description: "Edge network and DNS provider",
	},
	{
		Name:        "Fastly",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"fastly.net", "fastlylb.net"},
		Description: "Edge cloud CDN",
	},
	{
		Name:        "Akamai",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"akamaiedge.net", "akamai.net", "edgekey.net", "edgesuite.net"},
		NSPatterns:  []string{"akam.net"},
		Description: "Content delivery network",
	},
	{
		Name:        "Heroku",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"herokuapp.com", "herokudns.com", "herokussl.com"},
		Description: "Application hosting platform",
	},
	{
		Name:        "Netlify",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"netlify.app", "netlify.com", "netlifyglobalcdn.com"},
		NSPatterns:  []string{"nsone.net"},
		Description: "Static site hosting and CDN",
	},
	{
		Name:        "Vercel",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"vercel-dns.com", "vercel.app"},
		Description: "Frontend hosting platform",
	},
	{
		Name:        "DigitalOcean",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"ondigitalocean.app"},
		NSPatterns:  []string{"digitalocean.com"},
		Description: "Developer cloud platform",
	},
	{
		Name:        "GitHub Pages",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"github.io", "githubusercontent.com"},
		Description: "Static hosting from GitHub repositories",
	},
	{
		Name:        "Fly.io",
		Category:    CategoryCloud,
		CNAMEPatterns: []string{"fly.dev"},
		Description: "Application hosting close to users",
	},

	// --- analytics ---
	{
		Name:        "Google Analytics",
		Category:    CategoryAnalytics,
		TXTPatterns: []string{"google-analytics"},
		CNAMEPatterns: []string{"google-analytics.com"},
		Description: "Web analytics",
	},
	{
		Name:        "Segment",
		Category:    CategoryAnalytics,
		CNAMEPatterns: []string{"segment.com", "cdn.segment.com"},
		TXTPatterns: []string{"segment-site-verification="},
		Description: "Customer data platform",
	},
	{
		Name:        "Mixpanel",
		Category:    CategoryAnalytics,
		CNAMEPatterns: []string{"mixpanel.com"},
		TXTPatterns: []string{"mixpanel-domain-verify="},
		Description: "Product analytics",
	},
	{
		Name:        "Hotjar",
		Category:    CategoryAnalytics,
		CNAMEPatterns: []string{"hotjar.com"},
		Description: "Behavior analytics and heatmaps",
	},

	// --- security ---
	{
		Name:        "Okta",
		Category:    CategorySecurity,
		CNAMEPatterns: []string{"okta.com", "oktapreview.com"},
		Description: "Identity and access management",
	},
	{
		Name:        "OneLogin",
		Category:    CategorySecurity,
		CNAMEPatterns: []string{"onelogin.com"},
		Description: "Single sign-on provider",
	},
	{
		Name:        "Sucuri",
		Category:    CategorySecurity,
		CNAMEPatterns: []string{"sucuri.net"},
		NSPatterns:  []string{"sucuridns.com"},
		Description: "Website firewall and monitoring",
	},
	{
		Name:        "Imperva",
		Category:    CategorySecurity,
		CNAMEPatterns: []string{"incapdns.net", "incapsula.com"},
		Description: "Web application firewall",
	},
	{
		Name:        "Have I Been Pwned",
		Category:    CategorySecurity,
		TXTPatterns: []string{"have-i-been-pwned-verification="},
		Description: "Breach monitoring domain verification",
	},

	// --- marketing ---
	{
		Name:        "Mailchimp",
		Category:    CategoryMarketing,
		SPFPatterns: []string{"include:servers.mcsv.net"},
		CNAMEPatterns: []string{"mailchimp.com", "list-manage.com"},
		Description: "Email marketing platform",
	},
	{
		Name:        "HubSpot",
		Category:    CategoryMarketing,
		SPFPatterns: []string{"include:hubspotemail.net"},
		CNAMEPatterns: []string{"hubspot.net", "hs-sites.com", "sites.hubspot.net"},
		TXTPatterns: []string{"hs-site-verification=", "hubspot-developer-verification="},
		Description: "Marketing and CRM platform",
	},
	{
		Name:        "Klaviyo",
		Category:    CategoryMarketing,
		SPFPatterns: []string{"include:send.klaviyomail.com"},
		TXTPatterns: []string{"klaviyo-site-verification="},
		Description: "E-commerce marketing automation",
	},
	{
		Name:        "Braze",
		Category:    CategoryMarketing,
		SPFPatterns: []string{"include:spf.braze.com"},
		CNAMEPatterns: []string{"braze.com"},
		Description: "Customer engagement platform",
	},
	{
		Name:        "Unbounce",
		Category:    CategoryMarketing,
		CNAMEPatterns: []string{"unbounce.com", "unbouncepages.com"},
		Description: "Landing page builder",
	},

	// --- social ---
	{
		Name:        "Facebook",
		Category:    CategorySocial,
		TXTPatterns: []string{"facebook-domain-verification="},
		Description: "Meta domain ownership verification",
	},
	{
		Name:        "LinkedIn",
		Category:    CategorySocial,
		TXTPatterns: []string{"linkedin-domain-verification="},
		Description: "LinkedIn domain verification",
	},
	{
		Name:        "Pinterest",
		Category:    CategorySocial,
		TXTPatterns: []string{"pinterest-site-verification="},
		Description: "Pinterest site verification",
	},
	{
		Name:        "TikTok",
		Category:    CategorySocial,
		TXTPatterns: []string{"tiktok-domain-verification="},
		Description: "TikTok domain verification",
	},

	// --- payments ---
	{
		Name:        "Stripe",
		Category:    CategoryPayments,
		TXTPatterns: []string{"stripe-verification="},
		CNAMEPatterns: []string{"stripe.com"},
		Description: "Payment processing",
	},
	{
		Name:        "PayPal",
		Category:    CategoryPayments,
		TXTPatterns: []string{"paypal-domain-verification="},
		SPFPatterns: []string{"include:pp._spf.paypal.com"},
		Description: "Online payments",
	},
	{
		Name:        "Shopify",
		Category:    CategoryPayments,
		CNAMEPatterns: []string{"myshopify.com", "shops.myshopify.com"},
		SPFPatterns: []string{"include:shops.shopify.com"},
		Description: "E-commerce and payments platform",
	},

	// --- monitoring ---
	{
		Name:        "Datadog",
		Category:    CategoryMonitoring,
		TXTPatterns: []string{"datadog-domain-verification="},
		CNAMEPatterns: []string{"datadoghq.com"},
		Description: "Infrastructure monitoring",
	},
	{
		Name:        "New Relic",
		Category:    CategoryMonitoring,
		CNAMEPatterns: []string{"newrelic.com", "nr-data.net"},
		Description: "Application performance monitoring",
	},
	{
		Name:        "Pingdom",
		Category:    CategoryMonitoring,
		CNAMEPatterns: []string{"pingdom.com", "stats.pingdom.com"},
		Description: "Uptime monitoring",
	},
	{
		Name:        "Statuspage",
		Category:    CategoryMonitoring,
		CNAMEPatterns: []string{"statuspage.io", "stspg-customer.com"},
		TXTPatterns: []string{"status-page-domain-verification="},
		Description: "Hosted status pages",
	},
	{
		Name:        "Sentry",
		Category:    CategoryMonitoring,
		CNAMEPatterns: []string{"sentry.io"},
		Description: "Error tracking",
	},

	// --- productivity ---
	{
		Name:        "Atlassian",
		Category:    CategoryProductivity,
		TXTPatterns: []string{"atlassian-domain-verification="},
		CNAMEPatterns: []string{"atlassian.net"},
		Description: "Jira and Confluence workspace",
	},
	{
		Name:        "Notion",
		Category:    CategoryProductivity,
		TXTPatterns: []string{"notion-domain-verification="},
		Description: "Workspace and documentation",
	},
	{
		Name:        "DocuSign",
		Category:    CategoryProductivity,
		TXTPatterns: []string{"docusign="},
		Description: "Electronic signatures",
	},
	{
		Name:        "Dropbox",
		Category:    CategoryProductivity,
		TXTPatterns: []string{"dropbox-domain-verification="},
		Description: "File storage and sharing",
	},
	{
		Name:        "Calendly",
		Category:    CategoryProductivity,
		TXTPatterns: []string{"calendly-site-verification="},
		Description: "Scheduling",
	},

	// --- content ---
	{
		Name:        "WordPress.com",
		Category:    CategoryContent,
		CNAMEPatterns: []string{"wordpress.com", "wpengine.com"},
		NSPatterns:  []string{"wordpress.com"},
		Description: "Managed WordPress hosting",
	},
	{
		Name:        "Squarespace",
		Category:    CategoryContent,
		CNAMEPatterns: []string{"squarespace.com", "ext-cust.squarespace.com"},
		Description: "Website builder",
	},
	{
		Name:        "Webflow",
		Category:    CategoryContent,
		CNAMEPatterns: []string{"webflow.io", "proxy-ssl.webflow.com"},
		Description: "Visual site builder",
	},
	{
		Name:        "Ghost",
		Category:    CategoryContent,
		CNAMEPatterns: []string{"ghost.io"},
		Description: "Publishing platform",
	},
	{
		Name:        "Contentful",
		Category:    CategoryContent,
		TXTPatterns: []string{"contentful-domain-verification="},
		Description: "Headless CMS",
	},

	// --- communication ---
	{
		Name:        "Zoom",
		Category:    CategoryCommunication,
		TXTPatterns: []string{"zoom-domain-verification="},
		CNAMEPatterns: []string{"zoom.us"},
		Description: "Video conferencing",
	},
	{
		Name:        "Slack",
		Category:    CategoryCommunication,
		TXTPatterns: []string{"slack-domain-verification="},
		Description: "Team messaging",
	},
	{
		Name:        "Twilio",
		Category:    CategoryCommunication,
		TXTPatterns: []string{"twilio-domain-verification="},
		SPFPatterns: []string{"include:spf.twilio.com"},
		Description: "Programmable messaging and voice",
	},
	{
		Name:        "Intercom",
		Category:    CategoryCommunication,
		CNAMEPatterns: []string{"custom.intercom.help"},
		TXTPatterns: []string{"intercom-domain-validation="},
		Description: "Customer messaging",
	},
	{
		Name:        "Zendesk",
		Category:    CategoryCommunication,
		MXPatterns:  []string{"zendesk.com"},
		CNAMEPatterns: []string{"zendesk.com"},
		TXTPatterns: []string{"zendesk-verification="},
		Description: "Customer support platform",
	},

	// --- web3 ---
	{
		Name:        "ENS",
		Category:    CategoryWeb3,
		TXTPatterns: []string{"ens-domain-verification=", "a=0x"},
		Description: "Ethereum Name Service linkage",
	},
	{
		Name:        "Unstoppable Domains",
		Category:    CategoryWeb3,
		TXTPatterns: []string{"ud-domain-verification="},
		Description: "Blockchain domain verification",
	},

	// --- dns ---
	{
		Name:        "Amazon Route 53",
		Category:    CategoryDNS,
		NSPatterns:  []string{"awsdns-"},
		Description: "AWS managed DNS",
	},
	{
		Name:        "Cloudflare DNS",
		Category:    CategoryDNS,
		NSPatterns:  []string{".ns.cloudflare.com"},
		Description: "Cloudflare authoritative DNS",
	},
	{
		Name:        "NS1",
		Category:    CategoryDNS,
		NSPatterns:  []string{"nsone.net", "ns1.com"},
		Description: "Managed DNS platform",
	},
	{
		Name:        "UltraDNS",
		Category:    CategoryDNS,
		NSPatterns:  []string{"ultradns."},
		Description: "Vercara enterprise DNS",
	},
	{
		Name:        "GoDaddy DNS",
		Category:    CategoryDNS,
		NSPatterns:  []string{"domaincontrol.com"},
		Description: "GoDaddy managed DNS",
	},
	{
		Name:        "Namecheap DNS",
		Category:    CategoryDNS,
		NSPatterns:  []string{"registrar-servers.com"},
		Description: "Namecheap managed DNS",
	},
	{
		Name:        "DNSimple",
		Category:    CategoryDNS,
		NSPatterns:  []string{"dnsimple.com"},
		Description: "Developer DNS hosting",
	},
}
